package engine

// TradingState is the scheduler phase. The machine cycles daily:
// Idle -> Screening -> SignalCollection -> Buying -> Monitoring ->
// Selling -> Idle, with forced close jumping straight to Selling.
type TradingState int

const (
	StateIdle TradingState = iota
	StateScreening
	StateSignalCollection
	StateBuying
	StateMonitoring
	StateSelling
)

func (s TradingState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateScreening:
		return "SCREENING"
	case StateSignalCollection:
		return "SIGNAL_COLLECTION"
	case StateBuying:
		return "BUYING"
	case StateMonitoring:
		return "MONITORING"
	case StateSelling:
		return "SELLING"
	default:
		return "UNKNOWN"
	}
}
