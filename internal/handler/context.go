package handler

type ContextKey string

var (
	PrincipalCtx ContextKey = "principal"
	WorkOrderCtx ContextKey = "workOrder"
)
