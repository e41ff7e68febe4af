package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"meeting-brief-service/internal/domain"
	"meeting-brief-service/internal/domain/model"
	"meeting-brief-service/internal/usecase"
)

const (
	maxMultipartMemory = 32 << 20

	defaultListLimit = 20
	maxListLimit     = 100
)

type metadataPayload struct {
	Title           string `json:"title"`
	Attendees       string `json:"attendees"`
	MeetingType     string `json:"meeting_type"`
	AudienceLevel   string `json:"audience_level"`
	CalendarEventID string `json:"calendar_event_id"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	// Cap the whole request at the per-file limit times the file count, plus
	// slack for the metadata part and multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileBytes*int64(s.cfg.MaxFiles)+maxMultipartMemory)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "expected multipart/form-data")
		return
	}
	// Temp files backing large parts are released on every exit path.
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	rawMeta := r.FormValue("metadata")
	if rawMeta == "" {
		writeError(w, http.StatusBadRequest, "missing metadata part")
		return
	}
	var payload metadataPayload
	if err := json.Unmarshal([]byte(rawMeta), &payload); err != nil {
		writeError(w, http.StatusBadRequest, "metadata is not valid JSON")
		return
	}
	meta := model.MeetingMetadata{
		Title:           payload.Title,
		Attendees:       payload.Attendees,
		MeetingType:     model.MeetingType(payload.MeetingType),
		AudienceLevel:   model.AudienceLevel(payload.AudienceLevel),
		CalendarEventID: payload.CalendarEventID,
	}

	var files []usecase.UploadedFile
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			f, err := fh.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, "unreadable file part: "+fh.Filename)
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				writeError(w, http.StatusBadRequest, "unreadable file part: "+fh.Filename)
				return
			}
			files = append(files, usecase.UploadedFile{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}

	job, err := s.submitUC.Submit(r.Context(), meta, files)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrParseFailure):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.log.Error().Err(err).Msg("submission failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	jobID := job.ID
	if err := s.pool.Submit(func(ctx context.Context) error {
		return s.processor.Process(ctx, jobID)
	}); err != nil {
		// The job row is durable; the pending sweep picks it up on its next
		// tick.
		s.log.Warn().Err(err).Str("job_id", jobID).Msg("worker pool rejected job trigger")
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, err := s.queryUC.JobStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.log.Error().Err(err).Str("job_id", id).Msg("job status lookup failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetBrief(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	bw, err := s.queryUC.GetBrief(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "brief not found")
			return
		}
		s.log.Error().Err(err).Str("brief_id", id).Msg("brief lookup failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, briefDetailPayload(bw))
}

func (s *Server) handleListBriefs(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", defaultListLimit)
	if limit > maxListLimit {
		limit = maxListLimit
	}

	items, err := s.queryUC.ListBriefs(r.Context(), offset, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("brief listing failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	payload := make([]map[string]interface{}, 0, len(items))
	for _, it := range items {
		payload = append(payload, briefDetailPayload(it))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"briefs": payload,
		"offset": offset,
		"limit":  limit,
	})
}

func briefDetailPayload(bw *model.BriefWithMeeting) map[string]interface{} {
	pub := bw.Brief.Public()
	return map[string]interface{}{
		"brief": &pub,
		"meeting": map[string]interface{}{
			"id":             bw.Meeting.ID,
			"title":          bw.Meeting.Title,
			"attendees":      bw.Meeting.Attendees,
			"meeting_type":   bw.Meeting.MeetingType,
			"audience_level": bw.Meeting.AudienceLevel,
			"created_at":     bw.Meeting.CreatedAt,
		},
	}
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
