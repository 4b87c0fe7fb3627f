package handler

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/iho/udaancredit/internal/adapter/csvledger"
	"github.com/iho/udaancredit/internal/adapter/http/dto"
	"github.com/iho/udaancredit/internal/domain"
	"github.com/iho/udaancredit/internal/usecase"
)

// DefaultMaxBodyBytes limits request bodies when no limit is configured.
const DefaultMaxBodyBytes = 10 << 20

// uploadField is the multipart form field carrying a CSV ledger.
const uploadField = "file"

// AssessmentService defines the assessment operations the handler needs.
type AssessmentService interface {
	Policy() domain.RiskPolicy
	Assess(ctx context.Context, input usecase.AssessInput) (*domain.Assessment, error)
	AssessBatch(ctx context.Context, inputs []usecase.AssessInput) ([]*domain.Assessment, error)
	Score(ctx context.Context, features domain.FeatureSet) (domain.Evaluation, error)
}

// AssessmentHandler handles ledger assessment HTTP requests.
type AssessmentHandler struct {
	assessments  AssessmentService
	parser       *csvledger.Parser
	maxBodyBytes int64
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(assessments AssessmentService, parser *csvledger.Parser, maxBodyBytes int64) *AssessmentHandler {
	if parser == nil {
		parser = csvledger.NewParser(domain.DefaultMaxLedgerRows)
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &AssessmentHandler{
		assessments:  assessments,
		parser:       parser,
		maxBodyBytes: maxBodyBytes,
	}
}

// Assess scores a single ledger. The body is either a CSV ledger
// (text/csv, or a multipart upload in the "file" field) or JSON.
func (h *AssessmentHandler) Assess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	ledger, err := h.readLedger(r)
	if err != nil {
		status := mapDomainError(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		writeError(w, status, "invalid ledger", err.Error())
		return
	}

	assessment, err := h.assessments.Assess(r.Context(), usecase.AssessInput{Ledger: ledger})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to assess ledger", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.AssessmentFromDomain(assessment))
}

// AssessBatch scores several JSON ledgers in one request.
func (h *AssessmentHandler) AssessBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req dto.BatchAssessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, decodeStatus(err), "invalid request body", err.Error())
		return
	}

	if len(req.Ledgers) == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body", "ledgers must not be empty")
		return
	}

	assessments, err := h.assessments.AssessBatch(r.Context(), req.ToUseCaseInputs())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to assess ledgers", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.AssessmentsFromDomain(assessments))
}

// Score scores a precomputed feature set.
func (h *AssessmentHandler) Score(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req dto.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, decodeStatus(err), "invalid request body", err.Error())
		return
	}

	eval, err := h.assessments.Score(r.Context(), req)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to score features", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ScoreFromDomain(h.assessments.Policy().Name, eval))
}

func (h *AssessmentHandler) readLedger(r *http.Request) (domain.Ledger, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	switch mediaType {
	case "text/csv", "application/csv", "text/plain":
		return h.parser.Parse(r.Body)
	case "multipart/form-data":
		file, _, err := r.FormFile(uploadField)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return h.parser.Parse(file)
	default:
		var req dto.AssessLedgerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return req.ToLedger(), nil
	}
}

func decodeStatus(err error) int {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
