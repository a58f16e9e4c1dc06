package i18n

import (
	"golang.org/x/text/language"
)

func init() {
	lang := language.German

	// Errors, keyed by game.Code
	set(lang, "error.UNKNOWN", "Etwas ist schiefgelaufen.")
	set(lang, "error.INTERNAL", "Interner Serverfehler.")
	set(lang, "error.INVALID_INDEX", "Diese Karte gibt es nicht.")
	set(lang, "error.INVALID_ACTION", "Ungültige Anfrage.")
	set(lang, "error.NOT_YOUR_TURN", "Du bist nicht am Zug.")
	set(lang, "error.ROOM_FULL", "Raum ist voll (max. 4 Spieler).")
	set(lang, "error.GAME_ALREADY_STARTED", "Spiel läuft bereits.")
	set(lang, "error.WRONG_STATUS", "Das ist gerade nicht möglich.")
	set(lang, "error.ALREADY_KNOCKED", "In dieser Runde wurde schon Stop gesagt.")
	set(lang, "error.HAND_NOT_COMPLETE", "Tausch erst fertig: du brauchst genau 3 Karten.")
	set(lang, "error.SWAP_NOT_ALLOWED", "Alle tauschen geht nur mit drei verschiedenen Farben.")
	set(lang, "error.HAND_FULL", "Du hast schon 4 Karten. Leg zuerst eine ab.")
	set(lang, "error.CENTER_FULL", "In der Mitte liegen schon 4 Karten. Nimm zuerst eine.")
	set(lang, "error.NOT_ENOUGH_PLAYERS", "Es werden mindestens 2 Spieler gebraucht.")
	set(lang, "error.PLAYER_OUT", "Du bist ausgeschieden.")
	set(lang, "error.PLAYER_ALREADY_SEATED", "Du bist schon in diesem Raum.")
	set(lang, "error.ROOM_ALREADY_EXISTS", "Raum existiert bereits.")
	set(lang, "error.ROOM_NOT_FOUND", "Raum nicht gefunden.")
	set(lang, "error.PLAYER_NOT_FOUND", "Spieler nicht gefunden.")
	set(lang, "error.NOT_IN_ROOM", "Du bist nicht in diesem Raum.")

	// Room notices
	set(lang, ToastSwapAll, "%s hat alle 3 Karten getauscht!")
	set(lang, ToastKnock, "%s hat Stop gesagt!")
	set(lang, ToastThirtyOne, "%s hat 31!")
	set(lang, ToastGameOver, "%s gewinnt das Spiel!")
	set(lang, ToastLeft, "%s hat den Raum verlassen.")
}
