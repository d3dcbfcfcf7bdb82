package rewards

// Config controls the currency amounts granted per game outcome
type Config struct {
	// WinSurvived is granted to players on the winning faction who are still alive
	WinSurvived int
	// WinDied is granted to players on the winning faction who were eliminated
	WinDied int
	// Loss is applied to players on the losing faction (typically negative)
	Loss int
}

// DefaultConfig returns the standard reward schedule
func DefaultConfig() Config {
	return Config{
		WinSurvived: 30,
		WinDied:     15,
		Loss:        -10,
	}
}

// Service computes wallet adjustments for game outcomes
type Service struct {
	cfg Config
}

// New creates a rewards service. A zero config gets the default schedule.
func New(cfg Config) *Service {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	return &Service{cfg: cfg}
}

// Reward returns the wallet adjustment for one player's outcome
func (s *Service) Reward(won, survived bool) int {
	switch {
	case won && survived:
		return s.cfg.WinSurvived
	case won:
		return s.cfg.WinDied
	default:
		return s.cfg.Loss
	}
}
