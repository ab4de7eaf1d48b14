package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"wisefido-vitals/internal/export"
	"wisefido-vitals/internal/models"
	"wisefido-vitals/internal/service"

	"go.uber.org/zap"
)

// VitalsHandler 体征相关接口
type VitalsHandler struct {
	svc    *service.VitalsService
	logger *zap.Logger
}

func NewVitalsHandler(svc *service.VitalsService, logger *zap.Logger) *VitalsHandler {
	return &VitalsHandler{svc: svc, logger: logger}
}

type registerRequest struct {
	PatientName string `json:"patient_name"`
	PatientID   string `json:"patient_id"`
}

// SeriesPoint 单个体征的一个点
type SeriesPoint struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// SeriesResponse 一条图表序列，Name 为图例名称
type SeriesResponse struct {
	Signal models.Signal `json:"signal"`
	Name   string        `json:"name"`
	Points []SeriesPoint `json:"points"`
}

// Register POST /api/v1/session
func (h *VitalsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(fmt.Sprintf("invalid request body: %v", err)))
		return
	}
	if err := h.svc.Register(req.PatientName, req.PatientID); err != nil {
		h.writeError(w, err)
		return
	}
	h.GetSession(w, r)
}

// GetSession GET /api/v1/session
func (h *VitalsHandler) GetSession(w http.ResponseWriter, _ *http.Request) {
	info, err := h.svc.Session()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(info))
}

// Submit POST /api/v1/vitals
func (h *VitalsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var raw models.RawVitals
	if err := readBodyJSON(r, &raw); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(fmt.Sprintf("invalid request body: %v", err)))
		return
	}
	result, err := h.svc.SubmitReading(r.Context(), raw)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

// History GET /api/v1/vitals
func (h *VitalsHandler) History(w http.ResponseWriter, _ *http.Request) {
	history, err := h.svc.History()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(history))
}

// Series GET /api/v1/vitals/series?signal=heart_rate
// 不带 signal 时按固定顺序返回全部 5 条序列
func (h *VitalsHandler) Series(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("signal")
	if name != "" {
		signal, err := models.ParseSignal(name)
		if err != nil {
			h.writeError(w, err)
			return
		}
		series, err := h.collect(signal)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(series))
		return
	}

	all := make([]SeriesResponse, 0, len(models.AllSignals()))
	for _, signal := range models.AllSignals() {
		series, err := h.collect(signal)
		if err != nil {
			h.writeError(w, err)
			return
		}
		all = append(all, series)
	}
	writeJSON(w, http.StatusOK, Ok(all))
}

func (h *VitalsHandler) collect(signal models.Signal) (SeriesResponse, error) {
	series, err := h.svc.Series(signal)
	if err != nil {
		return SeriesResponse{}, err
	}
	out := SeriesResponse{
		Signal: signal,
		Name:   signal.DisplayName(),
		Points: []SeriesPoint{},
	}
	for i, v := range series {
		out.Points = append(out.Points, SeriesPoint{Index: i, Value: v})
	}
	return out, nil
}

// ExportCSV GET /api/v1/vitals/export.csv
func (h *VitalsHandler) ExportCSV(w http.ResponseWriter, _ *http.Request) {
	rows, err := h.svc.ExportRows()
	if err != nil {
		h.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, rows); err != nil {
		h.logger.Error("CSV export failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to export csv"))
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", export.CSVFileName, buf.Bytes())
}

// ExportXLSX GET /api/v1/vitals/export.xlsx
func (h *VitalsHandler) ExportXLSX(w http.ResponseWriter, _ *http.Request) {
	rows, err := h.svc.ExportRows()
	if err != nil {
		h.writeError(w, err)
		return
	}

	data, err := export.BuildXLSX(rows)
	if err != nil {
		h.logger.Error("XLSX export failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to export xlsx"))
		return
	}
	writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.XLSXFileName, data)
}

// PressEmergency POST /api/v1/emergency/press
func (h *VitalsHandler) PressEmergency(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.PressEmergency(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

// RecentAlarms GET /api/v1/emergency/alarms?limit=10
func (h *VitalsHandler) RecentAlarms(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), defaultAlarmLimit)
	events, err := h.svc.RecentAlarms(r.Context(), int64(limit))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(events))
}

func (h *VitalsHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidationError(err),
		errors.Is(err, models.ErrUnknownSignal),
		errors.Is(err, service.ErrInvalidPatient):
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
	case errors.Is(err, service.ErrAlarmsUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, Fail(err.Error()))
	case errors.Is(err, service.ErrNoSession),
		errors.Is(err, service.ErrSessionExists):
		writeJSON(w, http.StatusConflict, Fail(err.Error()))
	default:
		h.logger.Error("Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
	}
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
