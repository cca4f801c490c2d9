package sunmoon

import "sync"

var (
	defaultMu         sync.RWMutex
	defaultCalculator = New(DefaultSettings())
)

// Configure applies u to the settings of the process-wide Calculator. An
// empty update changes nothing.
func Configure(u SettingsUpdate) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultCalculator = defaultCalculator.With(u)
}

// Default returns the process-wide Calculator
func Default() *Calculator {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultCalculator
}

// SetDefault replaces the process-wide Calculator
func SetDefault(c *Calculator) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultCalculator = c
}
