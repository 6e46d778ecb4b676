package cookies

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ytget/ytdl-server/internal/model"
)

// Expiry thresholds
const (
	ExpiringSoonDays = 7
	Day              = 24 * time.Hour
)

// AuthCookieNames are the YouTube/Google cookies that identify a signed-in session
var AuthCookieNames = []string{
	"SID",
	"HSID",
	"SSID",
	"APISID",
	"SAPISID",
	"__Secure-1PSID",
	"__Secure-3PSID",
	"__Secure-1PAPISID",
	"__Secure-3PAPISID",
	"LOGIN_INFO",
}

// Analyzer derives a CookiesStatus from a cookie-jar file. It keeps no state
// between calls; every Analyze reads the file again.
type Analyzer struct {
	prober    Prober
	probeURL  string
	authNames map[string]struct{}
	now       func() time.Time
	logger    *slog.Logger
}

// NewAnalyzer creates an analyzer. A nil prober disables live probing.
func NewAnalyzer(prober Prober, probeURL string, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	authNames := make(map[string]struct{}, len(AuthCookieNames))
	for _, name := range AuthCookieNames {
		authNames[name] = struct{}{}
	}
	return &Analyzer{
		prober:    prober,
		probeURL:  probeURL,
		authNames: authNames,
		now:       time.Now,
		logger:    logger,
	}
}

// SetClock replaces the wall clock, used by tests
func (a *Analyzer) SetClock(now func() time.Time) {
	a.now = now
}

// Analyze classifies the jar at path. When probeLive is set and the jar holds
// cookies, a metadata-only request confirms the session against the platform.
// Analyze never fails; read errors are reported as status error.
func (a *Analyzer) Analyze(ctx context.Context, path string, probeLive bool) model.CookiesStatus {
	path = strings.TrimSpace(path)
	if path == "" || path == "." {
		return model.CookiesStatus{
			Status:  model.CookieStateNotConfigured,
			Message: "Cookies file path not configured",
		}
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.CookiesStatus{
				Status:  model.CookieStateMissing,
				Message: "Cookies file not found",
			}
		}
		return model.CookiesStatus{
			Status:  model.CookieStateError,
			Message: fmt.Sprintf("Error reading cookies: %v", err),
		}
	}

	records, err := ReadJarFile(path)
	if err != nil {
		return model.CookiesStatus{
			Exists:  true,
			Status:  model.CookieStateError,
			Message: fmt.Sprintf("Error reading cookies: %v", err),
		}
	}

	status := a.classify(records, a.now())
	if probeLive && a.prober != nil && status.Usable() {
		a.applyProbe(ctx, path, &status)
	}
	return status
}

// classify derives the expiry state of a parsed jar at instant now
func (a *Analyzer) classify(records []model.CookieRecord, now time.Time) model.CookiesStatus {
	status := model.CookiesStatus{
		Exists:      true,
		CookieCount: len(records),
	}
	if len(records) == 0 {
		status.Status = model.CookieStateEmpty
		status.Message = "Cookies file is empty"
		return status
	}

	var earliest int64
	for _, record := range records {
		if _, ok := a.authNames[record.Name]; !ok {
			continue
		}
		status.AuthCookieCount++
		if record.IsSession() {
			continue
		}
		if earliest == 0 || record.Expires < earliest {
			earliest = record.Expires
		}
	}

	if status.AuthCookieCount == 0 {
		status.Status = model.CookieStateValid
		status.Message = fmt.Sprintf("No authentication cookies among %d cookies, anonymous access only", len(records))
		return status
	}
	if earliest == 0 {
		status.Status = model.CookieStateUnknown
		status.Message = "Could not determine cookie expiration"
		return status
	}

	expiry := time.Unix(earliest, 0)
	status.ExpiresAt = &expiry
	if expiry.Before(now) {
		status.Status = model.CookieStateExpired
		status.Message = fmt.Sprintf("Cookies expired on %s", expiry.Format(time.DateOnly))
		return status
	}

	days := int(expiry.Sub(now) / Day)
	status.DaysUntilExpiry = days
	if days <= ExpiringSoonDays {
		status.Status = model.CookieStateExpiringSoon
		status.Message = fmt.Sprintf("Cookies expire in %d days - refresh soon", days)
		return status
	}

	status.Status = model.CookieStateValid
	status.Message = fmt.Sprintf("Cookies valid for %d more days", days)
	return status
}

// applyProbe runs the live check and folds its outcome into status
func (a *Analyzer) applyProbe(ctx context.Context, path string, status *model.CookiesStatus) {
	canDownload := false
	status.CanDownload = &canDownload

	err := a.safeProbe(ctx, path)
	switch {
	case err == nil:
		canDownload = true
		status.Message += "; live check passed"
	case errors.Is(err, errProbePanic):
		status.Message += fmt.Sprintf("; live check failed: %v", err)
	case IsAuthRejection(err.Error()):
		if status.Status != model.CookieStateExpired {
			status.Status = model.CookieStateInvalid
		}
		status.Message = fmt.Sprintf("Cookies rejected by the platform: %s", firstLine(err.Error()))
	default:
		canDownload = true
		status.Message += fmt.Sprintf("; live check inconclusive: %s", firstLine(err.Error()))
	}

	a.logger.Debug("Cookie live check finished",
		"status", status.Status,
		"can_download", canDownload,
		"error", err,
	)
}

var errProbePanic = errors.New("probe panicked")

// safeProbe calls the prober, converting a panic into an error
func (a *Analyzer) safeProbe(ctx context.Context, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errProbePanic, r)
		}
	}()
	return a.prober.Probe(ctx, path, a.probeURL)
}
