package server

import _ "embed"

// fallbackDashboard is served when no built dashboard bundle is installed.
// It polls the same API the full dashboard uses.
//
//go:embed fallback.html
var fallbackDashboard string
