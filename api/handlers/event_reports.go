package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/api"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/export"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// UploadReportHandler stores a post-event report in one slot, replacing what
// the slot held before
func (e Event) UploadReportHandler(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	slot := mux.Vars(r)["slot"]

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, "invalid report upload", badRequest("failed to parse multipart form"))
		return
	}
	files := formFiles(r, "file")
	if len(files) == 0 {
		writeError(w, "invalid report upload", badRequest("missing file"))
		return
	}
	file, err := e.Files.Save(models.FileCategoryEventReports, files[0])
	if err != nil {
		writeError(w, "failed to store report", err)
		return
	}

	var previous *models.FileAttachment
	stored := e.update(w, r, "failed to attach report", func(ev *models.Event) (workflow.Change, error) {
		previous = ev.EventReports[slot]
		return workflow.AttachReport(ev, slot, file, u, e.now())
	})
	if stored == nil {
		e.Files.RemoveAll(file)
		return
	}
	if previous != nil {
		e.Files.RemoveAll(*previous)
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Report uploaded", Data: stored})
}

// ExportEventsHandler writes every event, optionally filtered by status, as a workbook
func (e Event) ExportEventsHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if s := r.URL.Query().Get("status"); s != "" {
		status := models.EventStatus(s)
		if !status.Valid() {
			writeError(w, "invalid status", badRequest("unknown status %q", s))
			return
		}
		filter["status"] = status
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	events, err := e.DB.Find(ctx, filter)
	if err != nil {
		writeError(w, "failed to get events", err)
		return
	}
	if err := e.refresh(ctx, events); err != nil {
		writeError(w, "failed to refresh requirement quantities", err)
		return
	}

	var buf bytes.Buffer
	if err := export.EventsWorkbook(&buf, events, e.Loc); err != nil {
		writeError(w, "failed to build export", err)
		return
	}

	name := fmt.Sprintf("events-%s.xlsx", workflow.Today(e.now(), e.Loc))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		zap.S().Warnw("failed to write export", "error", err)
	}
}
