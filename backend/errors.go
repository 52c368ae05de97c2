package main

import "errors"

var (
	ErrWrongPhase        = errors.New("wrong game phase")
	ErrOutOfBounds       = errors.New("out of bounds")
	ErrCellOccupied      = errors.New("cell occupied")
	ErrInvalidPlayer     = errors.New("invalid player")
	ErrPlayerFrozen      = errors.New("player frozen")
	ErrNotFrozen         = errors.New("player not frozen")
	ErrUnknownSkill      = errors.New("unknown skill")
	ErrSkillUsed         = errors.New("skill already used")
	ErrSkillUnavailable  = errors.New("skill unavailable")
	ErrCounterOnly       = errors.New("skill only usable in a counter window")
	ErrInvalidTarget     = errors.New("invalid skill target")
	ErrCounterPending    = errors.New("counter window pending")
	ErrNoCounterWindow   = errors.New("no matching counter window")
	ErrNotHumanTurn      = errors.New("not human turn")
	ErrGameNotFound      = errors.New("game not found")
	ErrInvalidSettings   = errors.New("invalid game settings")
	ErrPublisherDisabled = errors.New("outcome publisher disabled")
)
