package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/seenimoa/treasuryrisk/internal/analysis/curve"
	"github.com/seenimoa/treasuryrisk/internal/analysis/liquidity"
	"github.com/seenimoa/treasuryrisk/internal/dashboard"
	"github.com/seenimoa/treasuryrisk/internal/datasource"
	"github.com/seenimoa/treasuryrisk/pkg/models"
	"github.com/seenimoa/treasuryrisk/pkg/utils"
)

// Section identifiers used when acquiring input.
const (
	sectionOverview        = "portfolio"
	sectionShocks          = "shocks"
	sectionLadder          = "ladder"
	sectionCurve           = "curve"
	sectionRecommendations = "recommendations"
	sectionDashboard       = "dashboard"
	sectionReport          = "report"
)

// multipartMemory is how much of a multipart upload is held in memory
// before spilling to temporary files.
const multipartMemory = 8 << 20

// AnalysisRequest is the JSON body accepted by every analysis endpoint.
// Exactly one portfolio source (csv, text, html or bonds) may be set.
type AnalysisRequest struct {
	CSV           string              `json:"csv,omitempty"`
	Text          string              `json:"text,omitempty"`
	HTML          string              `json:"html,omitempty"`
	Bonds         []models.BondRecord `json:"bonds,omitempty"`
	Shocks        []float64           `json:"shocks"`           // nil = configured defaults
	Curve         map[string]float64  `json:"curve,omitempty"`  // tenor → yield %
	CurveCSV      string              `json:"curve_csv,omitempty"`
	MaturedPolicy string              `json:"matured_policy,omitempty"`
}

// analysisInput is a decoded, validated request ready for the analytics.
type analysisInput struct {
	Bonds  []models.BondRecord
	Shocks []float64
	Curve  models.YieldCurve
	Policy liquidity.MaturedPolicy
}

func (in *analysisInput) options() dashboard.Options {
	return dashboard.Options{
		Shocks:        in.Shocks,
		Curve:         in.Curve,
		MaturedPolicy: in.Policy,
	}
}

// acquirePortfolio decodes the request for the given section and resolves
// its bond table, shocks, curve and matured policy. A request without any
// bonds is rejected.
func (s *Server) acquirePortfolio(section string, r *http.Request) (*analysisInput, error) {
	req, err := decodeRequest(r)
	if err != nil {
		return nil, s.rejected(section, err)
	}
	in, err := s.resolve(req, true)
	if err != nil {
		return nil, s.rejected(section, err)
	}
	return in, nil
}

// acquireCurve decodes a request that only needs a yield curve.
func (s *Server) acquireCurve(r *http.Request) (models.YieldCurve, error) {
	req, err := decodeRequest(r)
	if err != nil {
		return nil, s.rejected(sectionCurve, err)
	}
	in, err := s.resolve(req, false)
	if err != nil {
		return nil, s.rejected(sectionCurve, err)
	}
	return in.Curve, nil
}

func (s *Server) rejected(section string, err error) error {
	slog.Debug("input rejected", "section", section, "error", err)
	return err
}

// resolve validates req against the running configuration.
func (s *Server) resolve(req *AnalysisRequest, needBonds bool) (*analysisInput, error) {
	in := &analysisInput{}

	if needBonds {
		bonds, err := loadBonds(req)
		if err != nil {
			return nil, err
		}
		in.Bonds = bonds
	}

	if req.Shocks == nil {
		in.Shocks = append([]float64(nil), s.cfg.Analysis.DefaultShocks...)
	} else {
		for _, sh := range req.Shocks {
			if !s.cfg.ShockAllowed(sh) {
				return nil, fmt.Errorf("%w: shock %v%% is not offered (choose from %s)",
					models.ErrInvalidInput, sh, formatShocks(s.cfg.Analysis.ShockOptions))
			}
		}
		in.Shocks = req.Shocks
	}

	c, err := loadCurve(req)
	if err != nil {
		return nil, err
	}
	in.Curve = c

	policy := req.MaturedPolicy
	if policy == "" {
		policy = s.cfg.Analysis.MaturedPolicy
	}
	if in.Policy, err = liquidity.ParseMaturedPolicy(policy); err != nil {
		return nil, err
	}
	return in, nil
}

func loadBonds(req *AnalysisRequest) ([]models.BondRecord, error) {
	var sources []string
	for name, set := range map[string]bool{
		"csv":   req.CSV != "",
		"text":  req.Text != "",
		"html":  req.HTML != "",
		"bonds": len(req.Bonds) > 0,
	} {
		if set {
			sources = append(sources, name)
		}
	}
	if len(sources) > 1 {
		return nil, fmt.Errorf("%w: send only one portfolio source, got several", models.ErrInvalidInput)
	}

	var (
		bonds []models.BondRecord
		err   error
	)
	switch {
	case req.CSV != "":
		bonds, err = datasource.ParseCSV(strings.NewReader(req.CSV))
	case req.Text != "":
		bonds, err = datasource.ParseText(req.Text)
	case req.HTML != "":
		bonds, err = datasource.ParseHTML(strings.NewReader(req.HTML))
	case len(req.Bonds) > 0:
		bonds, err = validateBonds(req.Bonds)
	default:
		return nil, fmt.Errorf("%w: no portfolio supplied (send csv, text, html or bonds)", models.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}
	if len(bonds) == 0 {
		return nil, models.ErrEmptyPortfolio
	}
	return bonds, nil
}

// validateBonds applies the loader rules to bonds sent as JSON.
func validateBonds(in []models.BondRecord) ([]models.BondRecord, error) {
	out := make([]models.BondRecord, len(in))
	for i, b := range in {
		b.ISIN = utils.NormalizeISIN(b.ISIN)
		if b.ISIN == "" {
			return nil, fmt.Errorf("%w: bond %d has no ISIN", models.ErrInvalidInput, i+1)
		}
		if b.Maturity.IsZero() {
			return nil, fmt.Errorf("%w: bond %s has no maturity", models.ErrInvalidInput, b.ISIN)
		}
		if b.MarketValue < 0 {
			return nil, fmt.Errorf("%w: market value of %s is negative (%v)", models.ErrInvalidInput, b.ISIN, b.MarketValue)
		}
		out[i] = b
	}
	return out, nil
}

func loadCurve(req *AnalysisRequest) (models.YieldCurve, error) {
	switch {
	case req.CurveCSV != "" && len(req.Curve) > 0:
		return nil, fmt.Errorf("%w: send either curve or curve_csv, not both", models.ErrInvalidInput)
	case req.CurveCSV != "":
		return datasource.ParseCurveCSV(strings.NewReader(req.CurveCSV))
	case len(req.Curve) > 0:
		return curve.FromMap(req.Curve)
	}
	return models.YieldCurve{}, nil
}

// decodeRequest reads an AnalysisRequest from a JSON body, a multipart
// upload, or a raw CSV / text / HTML body.
func decodeRequest(r *http.Request) (*AnalysisRequest, error) {
	ct := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(ct)
	if ct != "" && err != nil {
		return nil, fmt.Errorf("%w: bad Content-Type %q", models.ErrInvalidInput, ct)
	}

	switch mediaType {
	case "multipart/form-data":
		return decodeMultipart(r)
	case "text/csv", "text/plain", "text/html":
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, readError(err)
		}
		req := &AnalysisRequest{}
		switch mediaType {
		case "text/csv":
			req.CSV = string(b)
		case "text/html":
			req.HTML = string(b)
		default:
			req.Text = string(b)
		}
		return req, nil
	}

	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty request body", models.ErrInvalidInput)
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: invalid request body: %v", models.ErrInvalidInput, err)
	}
	return &req, nil
}

// decodeMultipart reads the upload form: a portfolio "file" or "text"
// field, an optional "curve_file", "shocks" (comma separated), tenor fields
// such as "3m" or "10y", and "matured_policy".
func decodeMultipart(r *http.Request) (*AnalysisRequest, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, readError(err)
	}
	req := &AnalysisRequest{
		Text:          r.FormValue("text"),
		MaturedPolicy: r.FormValue("matured_policy"),
	}

	if f, hdr, err := r.FormFile("file"); err == nil {
		b, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, readError(err)
		}
		if req.Text != "" {
			return nil, fmt.Errorf("%w: send either a file or pasted text, not both", models.ErrInvalidInput)
		}
		format := datasource.FormatFromPath(hdr.Filename)
		if v := r.FormValue("format"); v != "" {
			if format, err = datasource.ParseFormat(v); err != nil {
				return nil, err
			}
		}
		switch format {
		case datasource.FormatHTML:
			req.HTML = string(b)
		case datasource.FormatText:
			req.Text = string(b)
		default:
			req.CSV = string(b)
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		return nil, readError(err)
	}

	if f, _, err := r.FormFile("curve_file"); err == nil {
		b, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, readError(err)
		}
		req.CurveCSV = string(b)
	}

	// An absent field selects the defaults; a present but empty one selects none.
	if vals, ok := r.MultipartForm.Value["shocks"]; ok {
		shocks, err := parseShockList(strings.Join(vals, ","))
		if err != nil {
			return nil, err
		}
		req.Shocks = shocks
	}

	for _, t := range models.Tenors() {
		v := strings.TrimSpace(r.FormValue(strings.ToLower(string(t))))
		if v == "" {
			continue
		}
		y, err := utils.ParseNumber(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s yield: %v", models.ErrInvalidInput, t, err)
		}
		if req.Curve == nil {
			req.Curve = make(map[string]float64)
		}
		req.Curve[string(t)] = y
	}
	return req, nil
}

func parseShockList(s string) ([]float64, error) {
	out := []float64{}
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		v, err := utils.ParseNumber(part)
		if err != nil {
			return nil, fmt.Errorf("%w: shock %q: %v", models.ErrInvalidInput, strings.TrimSpace(part), err)
		}
		out = append(out, v)
	}
	return out, nil
}

func formatShocks(shocks []float64) string {
	parts := make([]string, len(shocks))
	for i, s := range shocks {
		parts[i] = fmt.Sprintf("%+g", s)
	}
	return strings.Join(parts, ", ")
}

// readError keeps body-size errors recognisable and marks the rest as bad
// input.
func readError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: reading request: %v", models.ErrInvalidInput, err)
}
