package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/job-matcher/internal/ingestion"
	"github.com/jonathan/job-matcher/internal/ranking"
	"github.com/jonathan/job-matcher/internal/types"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// CatalogResponse is the body of GET /catalog.
type CatalogResponse struct {
	Skills   []string          `json:"skills"`
	Synonyms map[string]string `json:"synonyms"`
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// handleGetProfile returns the stored profile
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.store.GetProfile(r.Context())
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleUpdateProfile replaces the profile fields
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateProfileRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	profile := &types.Profile{Name: req.Name, Email: req.Email, Summary: req.Summary}
	if err := s.store.SaveProfile(r.Context(), profile); err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleListSkills returns the skills ordered by name
func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListSkills(r.Context())
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, list)
}

// handleCreateSkill adds a skill
func (s *Server) handleCreateSkill(w http.ResponseWriter, r *http.Request) {
	var req types.CreateSkillRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	skill, err := s.store.AddSkill(r.Context(), req.Name)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, skill)
}

// handleDeleteSkill removes a skill by ID
func (s *Server) handleDeleteSkill(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		s.errorResponse(w, http.StatusBadRequest, "Invalid skill ID")
		return
	}

	if err := s.store.DeleteSkill(r.Context(), id); err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAnalyze scores a posting against the stored profile and records the result.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	req.JobURL = strings.TrimSpace(req.JobURL)
	if strings.TrimSpace(req.JobText) == "" {
		req.JobText = ""
	}
	if err := req.Validate(); err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	ctx := r.Context()
	jobText := req.JobText
	if jobText == "" {
		if u, err := url.Parse(req.JobURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			s.errorFromErr(w, r, &ErrValidation{Field: "job_url", Message: "must be an http or https URL"})
			return
		}
		text, meta, err := ingestion.IngestFromURL(ctx, s.fetcher, req.JobURL)
		if err != nil {
			s.errorFromErr(w, r, err)
			return
		}
		s.logger.Info("fetched job posting", "url", req.JobURL, "platform", meta.Platform, "chars", meta.Chars)
		jobText = text
	}

	profile, err := s.store.GetProfile(ctx)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	skillList, err := s.store.ListSkills(ctx)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	userSkills := types.SkillNames(skillList)
	cvText := ranking.CVText(profile.Summary, userSkills)
	record := &types.AnalysisRecord{
		JobText:    jobText,
		JobURL:     req.JobURL,
		CVText:     cvText,
		UserSkills: userSkills,
		Result:     s.analyzer.Analyze(cvText, jobText, userSkills),
	}
	if err := s.store.SaveAnalysis(ctx, record); err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	s.logger.Info("analysis stored",
		"id", record.ID,
		"final_score", record.Result.FinalScore,
		"fallback", record.Result.UsedFallback,
	)
	s.jsonResponse(w, http.StatusCreated, record)
}

// handleMatch runs a stateless analysis on the supplied texts.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req types.MatchRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.analyzer.Analyze(req.CVText, req.JobText, req.UserSkills))
}

// handleListAnalyses returns the newest analyses first
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	records, err := s.store.ListAnalyses(r.Context(), limit)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, records)
}

// handleGetAnalysis returns one analysis by ID
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid analysis ID")
		return
	}

	record, err := s.store.GetAnalysis(r.Context(), id)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, record)
}

// handleCatalog returns the skills and synonyms the analyzer uses
func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, CatalogResponse{
		Skills:   s.catalog.Skills(),
		Synonyms: s.catalog.Synonyms(),
	})
}
