package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"cluedo-custom/internal/game"
	"cluedo-custom/internal/manager"
)

const qrSize = 320

type createGameRequest struct {
	Name     string   `json:"name"`
	Rooms    []string `json:"rooms"`
	Suspects []string `json:"suspects"`
	Weapons  []string `json:"weapons"`
	Tone     string   `json:"narrative_tone"`
	UseAI    bool     `json:"use_ai"`
}

type quickCreateRequest struct {
	Theme      string `json:"theme"`
	PlayerName string `json:"player_name"`
	UseAI      bool   `json:"use_ai"`
}

type joinRequest struct {
	GameCode   string `json:"game_code"`
	PlayerName string `json:"player_name"`
}

type actionRequest struct {
	PlayerID string `json:"player_id"`
	Action   string `json:"action"`
	Suspect  string `json:"suspect"`
	Weapon   string `json:"weapon"`
	Room     string `json:"room"`
	Dice     int    `json:"dice"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"app":        s.settings.AppName,
		"ai_enabled": s.settings.NarrationEnabled(),
	})
}

func (s *Server) themes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"themes": s.mgr.Themes()})
}

func (s *Server) createGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	g, err := s.mgr.CreateGame(manager.CreateRequest{
		Name:         req.Name,
		Rooms:        req.Rooms,
		Suspects:     req.Suspects,
		Weapons:      req.Weapons,
		Tone:         req.Tone,
		UseNarration: req.UseAI && s.settings.NarrationEnabled(),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game_code": g.ID, "name": g.Name})
}

func (s *Server) quickCreate(c *gin.Context) {
	var req quickCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	g, p, err := s.mgr.QuickCreate(req.Theme, req.PlayerName, req.UseAI && s.settings.NarrationEnabled())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"game_code":   g.ID,
		"player_id":   p.ID,
		"player_name": p.Name,
		"game":        gin.H{"name": g.Name, "rooms": g.Rooms, "suspects": g.SuspectNames, "weapons": g.WeaponNames},
	})
}

func (s *Server) joinGame(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	p, err := s.mgr.Join(req.GameCode, req.PlayerName)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"game_code":   strings.ToUpper(strings.TrimSpace(req.GameCode)),
		"player_id":   p.ID,
		"player_name": p.Name,
	})
}

func (s *Server) startGame(c *gin.Context) {
	code := c.Param("code")
	if err := s.mgr.Start(code); err != nil {
		abortWithError(c, err)
		return
	}
	g, err := s.mgr.Get(code)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "started",
		"first_player":   g.CurrentPlayer().Name,
		"players":        len(g.Players),
		"current_player": g.CurrentPlayerIndex,
	})
}

func (s *Server) playerView(c *gin.Context) {
	v, err := s.mgr.View(c.Param("code"), c.Param("playerID"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) action(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	res, err := s.mgr.Act(c.Param("code"), manager.Action{
		PlayerID: req.PlayerID,
		Kind:     game.ActionKind(req.Action),
		Suspect:  req.Suspect,
		Weapon:   req.Weapon,
		Room:     req.Room,
		Dice:     req.Dice,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) listGames(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"games": s.mgr.ListActive()})
}

func (s *Server) deleteGame(c *gin.Context) {
	code := c.Param("code")
	if err := s.mgr.Delete(code); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "game_code": strings.ToUpper(code)})
}

// qrCode renders a PNG pointing at the join link of a game.
func (s *Server) qrCode(c *gin.Context) {
	g, err := s.mgr.Get(c.Param("code"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	url := fmt.Sprintf("%s://%s/?join=%s", scheme, c.Request.Host, g.ID)

	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
