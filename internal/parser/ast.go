package parser

import "strconv"

// Command is one line of player input.
type Command struct {
	Attack  *AttackCmd  `parser:"( @@"`
	Defend  *DefendCmd  `parser:"| @@"`
	Wait    *WaitCmd    `parser:"| @@"`
	Retreat *RetreatCmd `parser:"| @@"`
	Resolve *ResolveCmd `parser:"| @@"`
	Auto    *AutoCmd    `parser:"| @@"`
	Targets *TargetsCmd `parser:"| @@"`
	Status  *StatusCmd  `parser:"| @@"`
	Queue   *QueueCmd   `parser:"| @@"`
	Help    *HelpCmd    `parser:"| @@ )"`
}

// AttackCmd strikes a unit, named by id or by name: "attack to: 3",
// "attack orc".
type AttackCmd struct {
	Keyword string      `parser:"@\"attack\""`
	Target  *TargetExpr `parser:"( \"to\" \":\" )? @@"`
}

// TargetExpr is a unit reference.
type TargetExpr struct {
	ID   *int   `parser:"( @Int"`
	Name string `parser:"| @Ident )"`
}

func (t *TargetExpr) String() string {
	if t.ID != nil {
		return strconv.Itoa(*t.ID)
	}
	return t.Name
}

type DefendCmd struct {
	Keyword string `parser:"@\"defend\""`
}

type WaitCmd struct {
	Keyword string `parser:"@\"wait\""`
}

type RetreatCmd struct {
	Keyword string `parser:"@\"retreat\""`
}

// ResolveCmd ends the battle at once in favour of the attacker.
type ResolveCmd struct {
	Keyword string `parser:"@\"resolve\""`
}

// AutoCmd lets the AI play the current unit.
type AutoCmd struct {
	Keyword string `parser:"@\"auto\""`
}

// TargetsCmd lists what the current unit may attack.
type TargetsCmd struct {
	Keyword string `parser:"@\"targets\""`
}

type StatusCmd struct {
	Keyword string `parser:"@\"status\""`
}

// QueueCmd shows the units still to act this round.
type QueueCmd struct {
	Keyword string `parser:"@\"queue\""`
}

// HelpCmd explains one command, or lists all of them.
type HelpCmd struct {
	Keyword string `parser:"@\"help\""`
	Command string `parser:"@(Keyword|Ident)?"`
}
