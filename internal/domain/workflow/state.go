package workflow

// State represents a package status in the treasury lifecycle
type State string

const (
	StateBorrador   State = "BORRADOR"
	StateEnviado    State = "ENVIADO"
	StateProgramado State = "PROGRAMADO"
	StateGenerado   State = "GENERADO"
	StatePorFondear State = "POR_FONDEAR"
	StateFondeado   State = "FONDEADO"
	StatePagado     State = "PAGADO"
)

var validStates = map[State]bool{
	StateBorrador:   true,
	StateEnviado:    true,
	StateProgramado: true,
	StateGenerado:   true,
	StatePorFondear: true,
	StateFondeado:   true,
	StatePagado:     true,
}

var terminalStates = map[State]bool{
	StatePagado: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}
