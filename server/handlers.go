package server

import (
	"net/http"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
	"github.com/tsrivatsav/Job-Alerts/scrape"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"in_flight": s.orchestrator.InFlight(),
	})
}

// handleCycle triggers a cycle on GET/POST and reports the trigger
// counts. Tasks keep running after the response; /health shows them
// draining.
func (s *Server) handleCycle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := s.orchestrator.RunCycle(s.baseCtx)
	if err != nil {
		s.logger.Error("Manual cycle failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "triggered",
		"summary": summary,
	})
}

// handleScrape runs one company synchronously and reports what it
// found. The company must be on the active roster.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Query().Get("company")
	if name == "" {
		http.Error(w, "Missing company parameter", http.StatusBadRequest)
		return
	}

	companies, err := s.roster.ListActive(r.Context())
	if err != nil {
		s.logger.Error("Roster read failed", "error", err)
		http.Error(w, "Roster unavailable", http.StatusInternalServerError)
		return
	}

	var company *jobs.Company
	for i := range companies {
		if companies[i].Name == name {
			company = &companies[i]
			break
		}
	}
	if company == nil {
		http.Error(w, "Company not on the active roster", http.StatusNotFound)
		return
	}

	result, err := s.runner.Run(r.Context(), *company)
	if err != nil {
		s.logger.Error("Manual scrape failed", "company", name, "error", err)
		status := http.StatusBadGateway
		if scrape.IsUnknownCompany(err) {
			status = http.StatusNotFound
		}
		s.writeJSON(w, status, map[string]any{
			"status":  "error",
			"company": name,
			"error":   err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"company":    result.CompanyName,
		"total_jobs": result.TotalFetched,
		"new_jobs":   len(result.NewPostings),
	})
}

// handleCompanies lists the registered adapters and, when the store
// supports it, how many postings have been recorded per company.
func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := map[string]any{
		"companies": s.registry.Companies(),
	}
	if last, ok := s.orchestrator.Last(); ok {
		resp["last_cycle"] = last
	}
	if s.counter != nil {
		counts, err := s.counter.CountByCompany(r.Context())
		if err != nil {
			s.logger.Warn("Failed to count seen postings", "error", err)
		} else {
			resp["seen_counts"] = counts
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}
