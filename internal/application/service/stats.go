package service

// Stage names reported to metrics.
const (
	StageValidate = "validate"
	StageBegin    = "ledger_begin"
	StageResolve  = "resolve"
	StageCreate   = "erp_create"
	StageFinalize = "ledger_finalize"
)
