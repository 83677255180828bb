package workflow

// Guards carries the optional guard functions attached to the guarded
// transitions of the package lifecycle. A nil guard permits unconditionally.
type Guards struct {
	// Enviar gates Borrador -> Enviado (budget verdict / folio redemption).
	Enviar GuardFunc
	// Programar gates Enviado -> Programado (company + bank account resolved).
	Programar GuardFunc
}

// NewPackageMachine builds the canonical package lifecycle:
//
//	Borrador -> Enviado -> Programado -> {Generado | PorFondear} -> Fondeado -> Pagado
//
// No backward transitions exist. Transitions past Programado are
// administrative and carry no guard in this subsystem.
func NewPackageMachine(initial State, guards Guards) StateMachine {
	b := NewBuilder()

	b.Configure(StateBorrador).
		PermitIf(TriggerEnviar, StateEnviado, guards.Enviar)

	b.Configure(StateEnviado).
		PermitIf(TriggerProgramar, StateProgramado, guards.Programar)

	b.Configure(StateProgramado).
		Permit(TriggerGenerar, StateGenerado).
		Permit(TriggerMandarFondeo, StatePorFondear)

	b.Configure(StateGenerado).
		Permit(TriggerFondear, StateFondeado)

	b.Configure(StatePorFondear).
		Permit(TriggerFondear, StateFondeado)

	b.Configure(StateFondeado).
		Permit(TriggerPagar, StatePagado)

	return b.Build(initial)
}
