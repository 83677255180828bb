package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerEnviar       Trigger = "ENVIAR"        // send to treasury
	TriggerProgramar    Trigger = "PROGRAMAR"     // schedule payment
	TriggerGenerar      Trigger = "GENERAR"       // generate payment orders
	TriggerMandarFondeo Trigger = "MANDAR_FONDEO" // route to funding queue
	TriggerFondear      Trigger = "FONDEAR"       // funds deposited
	TriggerPagar        Trigger = "PAGAR"         // payments executed
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
