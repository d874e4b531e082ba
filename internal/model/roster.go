package model

import "time"

// Roster is an ordered list of identifiers (roll numbers) uploaded for
// one seat position.  Several rosters may exist for the same position;
// they are consumed in creation order when a position runs out.
//
// Fields:
//  ID          – primary key identifier; increases with creation order.
//  OwnerID     – user ID of the coordinator owning the roster.
//  Name        – free text label, usually the uploaded file name.
//  Position    – 1-based seat position the roster feeds.
//  Identifiers – identifiers in seating order, blanks removed.
//  CreatedAt   – creation timestamp.
type Roster struct {
    ID          uint64    `json:"id"`          // rosters.id
    OwnerID     uint64    `json:"owner_id"`    // rosters.owner_id
    Name        string    `json:"name"`        // rosters.name
    Position    int       `json:"position"`    // rosters.position
    Identifiers []string  `json:"identifiers"` // rosters.identifiers (JSON array)
    CreatedAt   time.Time `json:"created_at"`  // rosters.created_at
}

// RosterSummary is a roster without its identifiers, used for listings.
type RosterSummary struct {
    ID        uint64    `json:"id"`
    Name      string    `json:"name"`
    Position  int       `json:"position"`
    Count     int       `json:"count"`
    CreatedAt time.Time `json:"created_at"`
}
