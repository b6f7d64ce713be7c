package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

func (a *API) handleResults(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	report, err := a.results.Report(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (a *API) handleExportResults(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	filename := fmt.Sprintf("wahlergebnisse-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := a.results.WriteCSV(ctx, w); err != nil {
		// Headers are already out; all we can do is log.
		log.Error().Err(err).Msg("csv export failed")
	}
}
