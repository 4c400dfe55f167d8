package websocket

import "fmt"

// Room is a typed room identifier. Callers construct rooms through UserRoom
// or TeamRoom rather than concatenating strings, so routing mistakes show up
// at the type level instead of as silently-empty rooms.
type Room struct {
	kind string
	id   string
}

// UserRoom addresses every connection belonging to one user
func UserRoom(userID string) Room {
	return Room{kind: "user", id: userID}
}

// TeamRoom addresses an arbitrary named group (team-scoped events)
func TeamRoom(teamID string) Room {
	return Room{kind: "team", id: teamID}
}

// ParseRoom converts a wire-level room name back into a Room. Only team
// rooms may be joined explicitly; user rooms are joined by authentication.
func ParseRoom(name string) (Room, error) {
	var kind, id string
	if n, err := fmt.Sscanf(name, "team:%s", &id); err == nil && n == 1 {
		kind = "team"
	} else {
		return Room{}, fmt.Errorf("room %q is not joinable", name)
	}
	return Room{kind: kind, id: id}, nil
}

// Name returns the wire-level room name
func (r Room) Name() string {
	return r.kind + ":" + r.id
}

// IsZero reports whether the room is the empty value
func (r Room) IsZero() bool {
	return r.kind == "" && r.id == ""
}
