package health

// Service reports liveness along with the configured providers.
type Service struct {
	provider string
	archive  string
}

// NewService constructs a new health service.
func NewService(provider, archive string) *Service {
	return &Service{provider: provider, archive: archive}
}

// Status returns the health payload.
func (s *Service) Status() map[string]any {
	status := map[string]any{"ok": true}
	if s == nil {
		return status
	}
	if s.provider != "" {
		status["provider"] = s.provider
	}
	if s.archive != "" {
		status["archive"] = s.archive
	}
	return status
}
