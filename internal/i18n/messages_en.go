package i18n

import (
	"golang.org/x/text/language"
)

func init() {
	lang := language.English

	// Errors, keyed by game.Code
	set(lang, "error.UNKNOWN", "Something went wrong.")
	set(lang, "error.INTERNAL", "Internal server error.")
	set(lang, "error.INVALID_INDEX", "That card does not exist.")
	set(lang, "error.INVALID_ACTION", "Invalid request.")
	set(lang, "error.NOT_YOUR_TURN", "It is not your turn.")
	set(lang, "error.ROOM_FULL", "Room is full (max 4 players).")
	set(lang, "error.GAME_ALREADY_STARTED", "The game is already running.")
	set(lang, "error.WRONG_STATUS", "That is not possible right now.")
	set(lang, "error.ALREADY_KNOCKED", "Someone already knocked this round.")
	set(lang, "error.HAND_NOT_COMPLETE", "Finish your exchange first: you need exactly 3 cards.")
	set(lang, "error.SWAP_NOT_ALLOWED", "You can only swap all cards with three different suits.")
	set(lang, "error.HAND_FULL", "You already hold 4 cards. Discard one first.")
	set(lang, "error.CENTER_FULL", "The center already holds 4 cards. Take one first.")
	set(lang, "error.NOT_ENOUGH_PLAYERS", "At least 2 players are needed.")
	set(lang, "error.PLAYER_OUT", "You are out of the game.")
	set(lang, "error.PLAYER_ALREADY_SEATED", "You are already in this room.")
	set(lang, "error.ROOM_ALREADY_EXISTS", "A room with this name already exists.")
	set(lang, "error.ROOM_NOT_FOUND", "Room not found.")
	set(lang, "error.PLAYER_NOT_FOUND", "Player not found.")
	set(lang, "error.NOT_IN_ROOM", "You are not in this room.")

	// Room notices
	set(lang, ToastSwapAll, "%s swapped all 3 cards!")
	set(lang, ToastKnock, "%s knocked!")
	set(lang, ToastThirtyOne, "%s has 31!")
	set(lang, ToastGameOver, "%s wins the game!")
	set(lang, ToastLeft, "%s left the room.")
}
