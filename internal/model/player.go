package model

import "github.com/benbeisheim/chessrules/internal/chess"

type ClientPlayer struct {
	ID    string `json:"name"`
	Color string `json:"color"`
}

type PlayerColor string

const (
	PlayerColorWhite PlayerColor = "white"
	PlayerColorBlack PlayerColor = "black"
)

func playerColorOf(c chess.Color) PlayerColor {
	if c == chess.White {
		return PlayerColorWhite
	}
	return PlayerColorBlack
}
