package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"wisefido-vitals/internal/models"
)

// CSVFileName 导出文件名
const CSVFileName = "vitals_history.csv"

var ErrBadHeader = errors.New("unexpected export header")

// WriteCSV 写出表头 + 每条记录一行（插入顺序）
func WriteCSV(w io.Writer, rows []models.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.ExportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV 解析 WriteCSV 的输出
func ReadCSV(r io.Reader) ([]models.ExportRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(models.ExportHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if !sameHeader(header) {
		return nil, ErrBadHeader
	}

	var rows []models.ExportRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func sameHeader(header []string) bool {
	if len(header) != len(models.ExportHeader) {
		return false
	}
	for i, h := range header {
		if h != models.ExportHeader[i] {
			return false
		}
	}
	return true
}

func parseRecord(rec []string) (models.ExportRow, error) {
	if _, err := models.ParseExportTime(rec[0]); err != nil {
		return models.ExportRow{}, fmt.Errorf("invalid DateTime %q: %w", rec[0], err)
	}

	values := make([]float64, len(rec)-1)
	for i, s := range rec[1:] {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.ExportRow{}, fmt.Errorf("invalid %s %q: %w", models.ExportHeader[i+1], s, err)
		}
		values[i] = v
	}

	return models.ExportRow{
		DateTime:         rec[0],
		Temperature:      values[0],
		SystolicBP:       values[1],
		DiastolicBP:      values[2],
		HeartRate:        values[3],
		OxygenSaturation: values[4],
	}, nil
}
