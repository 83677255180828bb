package entity

// Status constants for the Package lifecycle
const (
	StatusBorrador   = "BORRADOR"
	StatusEnviado    = "ENVIADO"
	StatusProgramado = "PROGRAMADO"
	StatusGenerado   = "GENERADO"
	StatusPorFondear = "POR_FONDEAR"
	StatusFondeado   = "FONDEADO"
	StatusPagado     = "PAGADO"
)

// Kind constants for LineItem
const (
	KindInvoice     = "INVOICE"
	KindCashPayment = "CASH_PAYMENT"
)

// Authorization tri-state constants for LineItem
const (
	AuthorizationPending  = "PENDING"
	AuthorizationApproved = "APPROVED"
	AuthorizationRejected = "REJECTED"
)

// Status constants for AuthorizationFolio
const (
	FolioPendiente  = "PENDIENTE"
	FolioAutorizado = "AUTORIZADO"
	FolioRechazado  = "RECHAZADO"
)
