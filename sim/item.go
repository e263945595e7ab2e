package sim

import "fmt"

// Item is one unit of work travelling down the chain.
// The same *Item is handed from station to station; it is owned by exactly
// one wait queue or service slot at a time.
type Item struct {
	ID          int     // assigned by the source station, kept across handoffs
	ArrivalTime float64 // time the item entered the current station
}

func (it *Item) String() string {
	return fmt.Sprintf("item_%d@%.6f", it.ID, it.ArrivalTime)
}
