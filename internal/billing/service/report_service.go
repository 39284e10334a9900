package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ReportService 报表导出服务
type ReportService struct {
	billSvc *BillService
}

func NewReportService(billSvc *BillService) *ReportService {
	return &ReportService{billSvc: billSvc}
}

var outstandingExportHeaders = []string{
	"Bill No", "Bill Date", "Due Date", "Customer", "Broker",
	"Net Amount", "Interest", "Discount", "Net Payable", "Paid", "Balance",
}

// ExportOutstanding 导出未清对账表为 xlsx
func (s *ReportService) ExportOutstanding(ctx context.Context, customerID, brokerID string, asOf time.Time) (*excelize.File, string, error) {
	bills, err := s.billSvc.Outstanding(ctx, customerID, brokerID, asOf)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "Outstanding"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range outstandingExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	totalPayable := decimal.Zero
	totalPaid := decimal.Zero
	totalBalance := decimal.Zero
	for rowIdx, ob := range bills {
		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), ob.BillNo)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), ob.BillDate.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), ob.DueDate.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), ob.CustomerName)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), ob.BrokerName)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), ob.NetAmount.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), ob.Interest.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), ob.Discount.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), ob.NetPayable.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), ob.PaidToDate.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("K%d", row), ob.Balance.InexactFloat64())

		totalPayable = totalPayable.Add(ob.NetPayable)
		totalPaid = totalPaid.Add(ob.PaidToDate)
		totalBalance = totalBalance.Add(ob.Balance)
	}

	summaryRow := len(bills) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", summaryRow), fmt.Sprintf("%d bills", len(bills)))
	f.SetCellValue(sheet, fmt.Sprintf("I%d", summaryRow), totalPayable.InexactFloat64())
	f.SetCellValue(sheet, fmt.Sprintf("J%d", summaryRow), totalPaid.InexactFloat64())
	f.SetCellValue(sheet, fmt.Sprintf("K%d", summaryRow), totalBalance.InexactFloat64())
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("K%d", summaryRow), summaryStyle)

	colWidths := []float64{16, 12, 12, 24, 18, 12, 10, 10, 12, 12, 12}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("Outstanding_%s.xlsx", asOf.Format("2006-01-02"))
	return f, filename, nil
}
