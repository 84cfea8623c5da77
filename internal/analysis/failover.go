package analysis

import (
	"context"

	"go.uber.org/zap"
)

// Failover wraps a primary analyzer and degrades to the deterministic
// fallback when the primary is unconfigured or fails for any reason. Callers
// therefore never see a backend error, only an analysis.
type Failover struct {
	primary  Analyzer
	fallback *FallbackAnalyzer
	logger   *zap.Logger
}

// NewFailover creates the degrading wrapper. primary may be nil, in which
// case every call goes straight to the fallback.
func NewFailover(primary Analyzer, logger *zap.Logger) *Failover {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Failover{primary: primary, fallback: NewFallbackAnalyzer(), logger: logger}
}

// Analyze runs the primary strategy, switching to the fallback on error. The
// returned analysis always has its risks filtered to the fixed categories.
func (f *Failover) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	if f.primary != nil {
		out, err := f.primary.Analyze(ctx, req)
		if err == nil {
			out.Risks = FilterRisks(out.Risks)
			return out, nil
		}
		f.logger.Warn("analysis backend failed, using fallback",
			zap.String("workspace", req.WorkspaceName),
			zap.Error(err),
		)
	}
	return f.fallback.Analyze(ctx, req)
}
