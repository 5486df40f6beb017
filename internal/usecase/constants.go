package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds a single posting transaction.
	DefaultTransactionTimeout = 30 * time.Second

	// SourceModuleClosing marks closing entries built by the closing service.
	SourceModuleClosing = "closing"

	// SourceModuleConsolidation marks elimination entries built for
	// consolidated reporting.
	SourceModuleConsolidation = "consolidation"
)
