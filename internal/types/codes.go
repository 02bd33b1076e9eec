package types

// Switch single-character state codes, as delivered on the wire
var stateCodes = map[string]InteractionState{
	"A": StateAlertingAgent,
	"C": StateOnCall,
	"H": StateOnHold,
	"M": StateVoicemail,
	"O": StateOffering,
	"R": StateAwaitingAnswer,
	"P": StateParked,
	"E": StateCallEndedRemotely,
	"I": StateCallEndedLocally,
	"S": StateDialing,
}

// DecodeState maps a switch state code to its domain state.
// Unrecognized codes decode to StateUnknown, never an error.
func DecodeState(code string) InteractionState {
	return stateCodes[code]
}

// DecodeCallType maps a switch call-type code to its domain call type
func DecodeCallType(code string) CallType {
	switch code {
	case "E":
		return CallTypeExternal
	case "I":
		return CallTypeIntercom
	default:
		return CallTypeUnknown
	}
}

// DecodeDirection maps a switch direction code to its domain direction
func DecodeDirection(code string) CallDirection {
	switch code {
	case "I":
		return DirectionInbound
	case "O":
		return DirectionOutbound
	default:
		return DirectionUnknown
	}
}
