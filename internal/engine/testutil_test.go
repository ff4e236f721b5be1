package engine

func testUnitType(id string, hp, armor, initiative int) *UnitType {
	return &UnitType{
		ID:          id,
		Name:        id,
		HitPoints:   hp,
		Armor:       armor,
		Initiative:  initiative,
		AttackCount: 1,
		Primary: Attack{
			Name:     "Strike",
			Type:     AttackDamage,
			Source:   SourceWeapon,
			Reach:    ReachAdjacent,
			Power:    25,
			Accuracy: 80,
		},
	}
}

func testBattleEvents() []Event {
	return []Event{
		&BattleStartedEvent{AttackerName: "Empire", DefenderName: "Legions"},
		&UnitAddedEvent{ID: 0, Player: Attacker, UnitType: testUnitType("squire", 100, 0, 50), Position: Position{Line: FrontLine, Flank: 1}},
		&UnitAddedEvent{ID: 1, Player: Attacker, UnitType: testUnitType("archer", 45, 0, 60), Position: Position{Line: BackLine, Flank: 1}},
		&UnitAddedEvent{ID: 2, Player: Defender, UnitType: testUnitType("imp", 50, 10, 40), Position: Position{Line: FrontLine, Flank: 0}},
		&UnitAddedEvent{ID: 3, Player: Defender, UnitType: testUnitType("cultist", 40, 0, 30), Position: Position{Line: BackLine, Flank: 2}, HitPoints: 20},
	}
}
