package handlers

import (
	"net/http"
	"strconv"

	"imagestudio/internal/domain/jsoncfg"
	"imagestudio/internal/imagegen"
)

type batchSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Batch runs the prompts sequentially. With ?format=zip the successful images
// are returned as an archive instead of the JSON summary. The envelope reports
// success only when every prompt succeeded.
func (a *App) Batch(w http.ResponseWriter, r *http.Request) {
	var req jsoncfg.BatchFile
	if !a.decodeJSON(w, r, &req) {
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	results := a.Service.BatchGenerateFile(r.Context(), req)
	summary := batchSummary{Total: len(results)}
	for _, res := range results {
		if res.Success {
			summary.Succeeded++
		}
	}
	summary.Failed = summary.Total - summary.Succeeded

	if r.URL.Query().Get("format") == "zip" {
		archive, err := imagegen.ArchiveResults(results)
		if err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="`+req.OutputPrefix+`.zip"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(archive)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(archive)
		return
	}

	a.json(w, http.StatusOK, envelope{
		Success: summary.Failed == 0,
		Message: "Batch finished",
		Data: map[string]any{
			"summary": summary,
			"results": results,
		},
	})
}
