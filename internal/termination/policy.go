package termination

import (
	"go.uber.org/zap"
)

// Policy runs the termination rules in priority order.
type Policy struct {
	config Config
	rules  []Rule
	logger *zap.Logger
}

// New builds the policy with the reference rule order:
// suspicious activity, misconduct signal, abusive language, quit request, minimum words.
func New(cfg Config, logger *zap.Logger) *Policy {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MinWords < 0 {
		cfg.MinWords = 0
	}

	return &Policy{
		config: cfg,
		logger: logger,
		rules: []Rule{
			NewSuspiciousActivity(cfg.SuspiciousActivityLimit),
			NewMisconductSignal(cfg.MisconductSignals),
			NewAbusiveLanguage(cfg.AbusiveKeywords),
			NewQuitRequest(cfg.QuitKeywords),
			NewMinimumWords(cfg.MinWords, cfg.IsSkip),
		},
	}
}

// Config returns the configuration the policy was built with.
func (p *Policy) Config() Config {
	return p.config
}

// Guard checks only the out-of-band counters, before any text is processed.
func (p *Policy) Guard(counters Counters) Verdict {
	return p.run(p.rules[:1], "", counters)
}

// Evaluate returns the verdict for one raw submission. It is a total function.
func (p *Policy) Evaluate(text string, counters Counters) Verdict {
	return p.run(p.rules, text, counters)
}

func (p *Policy) run(rules []Rule, text string, counters Counters) Verdict {
	for _, rule := range rules {
		reason, hit := rule.Check(text, counters)
		if !hit {
			continue
		}

		p.logger.Debug("termination rule fired",
			zap.String("rule", rule.Name()),
			zap.String("reason", string(reason)),
		)
		return Verdict{Terminate: true, Reason: reason, Rule: rule.Name()}
	}
	return Continue
}
