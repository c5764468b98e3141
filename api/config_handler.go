package api

import (
	"net/http"

	"github.com/seenimoa/treasuryrisk/internal/analysis/liquidity"
	"github.com/seenimoa/treasuryrisk/internal/config"
	"github.com/seenimoa/treasuryrisk/pkg/models"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config       *config.Config `json:"config"`
	ConfigFile   string         `json:"config_file"` // path to the active config file, if any
	LadderLabels []string       `json:"ladder_labels"`
	Tenors       []models.Tenor `json:"tenors"`
}

// handleGetConfig returns the running configuration along with the fixed
// ladder buckets and curve tenors the UI renders.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:       s.cfg,
			ConfigFile:   s.cfg.Source(),
			LadderLabels: liquidity.Labels(),
			Tenors:       models.Tenors(),
		},
	})
}
