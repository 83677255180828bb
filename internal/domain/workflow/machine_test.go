package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateBorrador, false},
		{StateEnviado, false},
		{StateProgramado, false},
		{StateGenerado, false},
		{StatePorFondear, false},
		{StateFondeado, false},
		{StatePagado, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"borrador", StateBorrador, true},
		{"pagado", StatePagado, true},
		{"invalid state", State("INVALID"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTrigger_String(t *testing.T) {
	if got := TriggerEnviar.String(); got != "ENVIAR" {
		t.Errorf("Trigger.String() = %v, want %v", got, "ENVIAR")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	builder.Configure(State("BOGUS"))
}

func TestMachine_FireTransitions(t *testing.T) {
	m := NewPackageMachine(StateBorrador, Guards{})

	steps := []struct {
		trigger Trigger
		want    State
	}{
		{TriggerEnviar, StateEnviado},
		{TriggerProgramar, StateProgramado},
		{TriggerGenerar, StateGenerado},
		{TriggerFondear, StateFondeado},
		{TriggerPagar, StatePagado},
	}

	for _, step := range steps {
		if err := m.Fire(context.Background(), step.trigger); err != nil {
			t.Fatalf("Fire(%s) returned error: %v", step.trigger, err)
		}
		if m.State() != step.want {
			t.Fatalf("after %s state = %s, want %s", step.trigger, m.State(), step.want)
		}
	}
}

func TestMachine_PorFondearBranch(t *testing.T) {
	m := NewPackageMachine(StateProgramado, Guards{})

	if err := m.Fire(context.Background(), TriggerMandarFondeo); err != nil {
		t.Fatalf("Fire(MANDAR_FONDEO) returned error: %v", err)
	}
	if m.State() != StatePorFondear {
		t.Fatalf("state = %s, want %s", m.State(), StatePorFondear)
	}
	if err := m.Fire(context.Background(), TriggerFondear); err != nil {
		t.Fatalf("Fire(FONDEAR) returned error: %v", err)
	}
	if m.State() != StateFondeado {
		t.Fatalf("state = %s, want %s", m.State(), StateFondeado)
	}
}

func TestMachine_NoBackwardTransitions(t *testing.T) {
	m := NewPackageMachine(StateEnviado, Guards{})

	err := m.Fire(context.Background(), TriggerEnviar)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire(ENVIAR) from Enviado = %v, want ErrInvalidTransition", err)
	}
	if m.State() != StateEnviado {
		t.Errorf("state mutated on invalid transition: %s", m.State())
	}
}

func TestMachine_GuardErrorSurfacesUnchanged(t *testing.T) {
	guardErr := errors.New("budget gate says no")
	m := NewPackageMachine(StateBorrador, Guards{
		Enviar: func(ctx context.Context) error { return guardErr },
	})

	err := m.Fire(context.Background(), TriggerEnviar)
	if !errors.Is(err, guardErr) {
		t.Errorf("Fire() = %v, want the guard's own error", err)
	}
	if m.State() != StateBorrador {
		t.Errorf("state mutated despite guard failure: %s", m.State())
	}
}

func TestMachine_GuardPassAllowsTransition(t *testing.T) {
	called := false
	m := NewPackageMachine(StateBorrador, Guards{
		Enviar: func(ctx context.Context) error {
			called = true
			return nil
		},
	})

	if err := m.Fire(context.Background(), TriggerEnviar); err != nil {
		t.Fatalf("Fire() returned error: %v", err)
	}
	if !called {
		t.Error("guard was not evaluated")
	}
	if m.State() != StateEnviado {
		t.Errorf("state = %s, want %s", m.State(), StateEnviado)
	}
}

func TestMachine_CanFire(t *testing.T) {
	m := NewPackageMachine(StateProgramado, Guards{})

	if !m.CanFire(TriggerGenerar) {
		t.Error("CanFire(GENERAR) = false, want true")
	}
	if !m.CanFire(TriggerMandarFondeo) {
		t.Error("CanFire(MANDAR_FONDEO) = false, want true")
	}
	if m.CanFire(TriggerEnviar) {
		t.Error("CanFire(ENVIAR) = true, want false")
	}
}

func TestMachine_TerminalStateHasNoTriggers(t *testing.T) {
	m := NewPackageMachine(StatePagado, Guards{})

	if got := m.PermittedTriggers(); len(got) != 0 {
		t.Errorf("PermittedTriggers() from Pagado = %v, want none", got)
	}
}
