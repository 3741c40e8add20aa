// Command pokerd is the CLI/RPC surface (spec.md §6): a gin HTTP API
// plus a gorilla/websocket channel that answers each client message with
// the table's current snapshot, in the
// same shape as a prior cmd/game-server/main.go (a GameServer struct
// holding a map of live tables behind a mutex, a websocket upgrader,
// REST handlers alongside the socket) — retargeted from a single
// Hold'em/Omaha table server onto the full table+tournament engine.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tablestakes/internal/analytics"
	"tablestakes/internal/clock"
	"tablestakes/internal/fraud"
	"tablestakes/internal/ledger"
	"tablestakes/internal/ledger/memory"
	"tablestakes/internal/metrics"
	"tablestakes/internal/randsrc"
	"tablestakes/internal/registry"
	"tablestakes/internal/table"
	"tablestakes/internal/tournament"
	"tablestakes/pkg/rng"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // development default
	},
}

// Server holds every live table and tournament, plus the collaborators
// they dispatch side effects through, mirroring a prior GameServer but
// keyed by both table id and tournament id.
type Server struct {
	mu          sync.RWMutex
	tables      map[table.TableID]*table.Table
	tournaments map[string]*tournament.Tournament
	handStarted map[table.TableID]time.Time

	directory *registry.Registry
	ledgerGW  ledger.Gateway
	clk       clock.Clock
	rngSrc    randsrc.Source
	observer  *fraud.Observer
	publisher *analytics.EventPublisher // nil when no broker is configured
}

// NewServer wires the engine's collaborators the way a prior
// NewGameServer wired rng.System + FraudService, minus the
// goroutine-based table loop this engine doesn't use.
func NewServer() (*Server, error) {
	rngSystem, err := rng.NewSystem(nil)
	if err != nil {
		return nil, fmt.Errorf("pokerd: init rng: %w", err)
	}

	return &Server{
		tables:      make(map[table.TableID]*table.Table),
		tournaments: make(map[string]*tournament.Tournament),
		handStarted: make(map[table.TableID]time.Time),
		directory:   registry.New(),
		ledgerGW:    memory.New(0),
		clk:         clock.Wall{},
		rngSrc:      randsrc.NewSystem(rngSystem),
		observer:    fraud.NewObserver(fraud.DefaultScoringWeights()),
	}, nil
}

func (s *Server) dispatch(ctx context.Context, effects []table.PendingSideEffect) {
	for _, eff := range effects {
		var err error
		switch eff.Kind {
		case "refund", "rake_referrer", "rake_share", "rake_house",
			"leave_payout", "kick_payout", "table_withdrawal", "prize":
			err = s.ledgerGW.Deposit(ctx, eff.Currency, eff.Account, eff.Amount)
		default: // buy_in, rebuy, reentry, addon
			err = s.ledgerGW.Withdraw(ctx, eff.Currency, eff.Account, eff.Amount)
		}
		if err != nil {
			log.Printf("pokerd: side effect %s failed: %v", eff.Kind, err)
			continue
		}
		if eff.Kind == "rake_house" {
			metrics.RakeCollected.WithLabelValues(string(eff.Account), eff.Currency.String()).Add(float64(eff.Amount))
		}
	}
}

func (s *Server) publish(ctx context.Context, ev analytics.HandEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.Printf("pokerd: publish analytics event failed: %v", err)
	}
}

// --- Table handlers ---

type createTableRequest struct {
	ID          string `json:"id"`
	SeatCount   int    `json:"seatCount"`
	GameType    string `json:"gameType"`
	BettingType string `json:"bettingType"`
	SmallBlind  int64  `json:"smallBlind"`
	BigBlind    int64  `json:"bigBlind"`
	Privacy     string `json:"privacy"` // public, invite_only, application
}

func (s *Server) createTable(c *gin.Context) {
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SeatCount == 0 {
		req.SeatCount = 9
	}

	cfg := table.TableConfig{
		ID:          table.TableID(req.ID),
		SeatCount:   req.SeatCount,
		GameType:    table.GameType(req.GameType),
		BettingType: table.BettingType(req.BettingType),
		SmallBlind:  req.SmallBlind,
		BigBlind:    req.BigBlind,
	}
	privacy, err := registry.ParsePrivacy(req.Privacy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := table.NewTable(cfg, s.clk)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	s.tables[cfg.ID] = t
	s.mu.Unlock()

	if err := s.directory.Register(cfg.ID, cfg, privacy); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tableId": req.ID})
}

func (s *Server) lookupTable(c *gin.Context) (*table.Table, bool) {
	s.mu.RLock()
	t, ok := s.tables[table.TableID(c.Param("tableId"))]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
	}
	return t, ok
}

func (s *Server) getTable(c *gin.Context) {
	t, ok := s.lookupTable(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, t.Snapshot())
}

func (s *Server) quickJoin(c *gin.Context) {
	stake, err := strconv.ParseInt(c.Query("stake"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stake query parameter required"})
		return
	}
	id, err := s.directory.QuickJoin(ledger.Currency{Kind: ledger.Fake}, stake)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tableId": id})
}

func (s *Server) listTables(c *gin.Context) {
	f := registry.Filter{GameType: table.GameType(c.Query("gameType"))}
	if ms, err := strconv.ParseInt(c.Query("minStake"), 10, 64); err == nil {
		f.MinStake = ms
	}
	if ms, err := strconv.ParseInt(c.Query("maxStake"), 10, 64); err == nil {
		f.MaxStake = ms
	}
	c.JSON(http.StatusOK, s.directory.List(f))
}

type joinTableRequest struct {
	PlayerID   string `json:"playerId"`
	SeatIndex  int    `json:"seatIndex"`
	Stake      int64  `json:"stake"`
	SittingOut bool   `json:"sittingOut"`
}

func (s *Server) joinTable(c *gin.Context) {
	t, ok := s.lookupTable(c)
	if !ok {
		return
	}
	var req joinTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev, err := t.AddUser(table.PlayerID(req.PlayerID), req.SeatIndex, req.Stake, req.SittingOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.dispatch(c.Request.Context(), ev.SideEffects)
	snap := t.Snapshot()
	_ = s.directory.UpdatePlayerCount(table.TableID(c.Param("tableId")), len(snap.Players))
	c.JSON(http.StatusOK, snap)
}

func (s *Server) leaveTable(c *gin.Context) {
	s.removeFromTable(c, "left")
}

func (s *Server) kickPlayer(c *gin.Context) {
	s.removeFromTable(c, "kicked")
}

func (s *Server) removeFromTable(c *gin.Context, reason string) {
	t, ok := s.lookupTable(c)
	if !ok {
		return
	}
	ev, err := t.RemoveUser(table.PlayerID(c.Param("playerId")), reason)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.dispatch(c.Request.Context(), ev.SideEffects)
	if reason == "kicked" {
		metrics.PlayersKicked.WithLabelValues(c.Param("tableId"), reason).Inc()
	}
	snap := t.Snapshot()
	_ = s.directory.UpdatePlayerCount(table.TableID(c.Param("tableId")), len(snap.Players))
	c.JSON(http.StatusOK, snap)
}

type actionRequest struct {
	PlayerID   string `json:"playerId"`
	Amount     int64  `json:"amount"`
	DecisionMs int64  `json:"decisionTimeMs"`
}

func (s *Server) runAction(c *gin.Context, action string, op func(t *table.Table, playerID table.PlayerID, amount int64) (table.TableEvents, error)) {
	t, ok := s.lookupTable(c)
	if !ok {
		return
	}
	var req actionRequest
	_ = c.ShouldBindJSON(&req)
	if req.PlayerID == "" {
		req.PlayerID = c.Param("playerId")
	}

	before := t.Snapshot()
	ev, err := op(t, table.PlayerID(req.PlayerID), req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.dispatch(c.Request.Context(), ev.SideEffects)

	if alert := s.observer.Observe(fraud.ActionObservation{
		PlayerID:     req.PlayerID,
		TableID:      c.Param("tableId"),
		DecisionTime: time.Duration(req.DecisionMs) * time.Millisecond,
		PotSize:      before.Pot,
		BetAmount:    req.Amount,
		Timestamp:    s.clk.Now(),
	}); alert.Severity != fraud.SeverityNone {
		log.Printf("pokerd: fraud observer flagged player %s on table %s (rule=%s score=%.2f)",
			req.PlayerID, c.Param("tableId"), alert.Rule, alert.Score)
	}

	metrics.ActionsProcessed.WithLabelValues(c.Param("tableId"), action).Inc()
	if ev.HandComplete {
		tableID := table.TableID(c.Param("tableId"))
		s.mu.Lock()
		if started, ok := s.handStarted[tableID]; ok {
			metrics.HandDuration.WithLabelValues(c.Param("tableId")).Observe(s.clk.Now().Sub(started).Seconds())
			delete(s.handStarted, tableID)
		}
		s.mu.Unlock()
		if ev.Showdown != nil {
			for _, award := range ev.Showdown.Awards {
				metrics.PotSize.WithLabelValues(c.Param("tableId"), before.Currency).Observe(float64(award.Amount))
			}
		}
		s.publish(c.Request.Context(), analytics.HandEvent{
			EventType: "hand_complete",
			TableID:   c.Param("tableId"),
			PotSize:   before.Pot,
			Timestamp: s.clk.Now(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"events": ev, "table": t.Snapshot()})
}

func (s *Server) placeBet(c *gin.Context) {
	s.runAction(c, "bet", func(t *table.Table, p table.PlayerID, amount int64) (table.TableEvents, error) {
		return t.Bet(p, amount)
	})
}

func (s *Server) foldAction(c *gin.Context) {
	s.runAction(c, "fold", func(t *table.Table, p table.PlayerID, _ int64) (table.TableEvents, error) {
		return t.Fold(p, false)
	})
}

func (s *Server) checkAction(c *gin.Context) {
	s.runAction(c, "check", func(t *table.Table, p table.PlayerID, _ int64) (table.TableEvents, error) {
		return t.Check(p)
	})
}

func (s *Server) sitIn(c *gin.Context) {
	s.runAction(c, "sit_in", func(t *table.Table, p table.PlayerID, _ int64) (table.TableEvents, error) {
		return t.SitIn(p)
	})
}

func (s *Server) sitOut(c *gin.Context) {
	s.runAction(c, "sit_out", func(t *table.Table, p table.PlayerID, _ int64) (table.TableEvents, error) {
		return t.SitOut(p, false)
	})
}

func (s *Server) handleTimerExpired(c *gin.Context) {
	s.runAction(c, "timer_expired", func(t *table.Table, p table.PlayerID, _ int64) (table.TableEvents, error) {
		return t.HandleTimerExpired(p)
	})
}

func (s *Server) startHand(c *gin.Context) {
	t, ok := s.lookupTable(c)
	if !ok {
		return
	}
	seed, err := s.rngSrc.RawRand()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ev, err := t.StartHand(seed[:])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, k := range ev.Kicked {
		metrics.PlayersKicked.WithLabelValues(c.Param("tableId"), k.Reason.String()).Inc()
		ev.SideEffects = append(ev.SideEffects, table.PendingSideEffect{
			Kind:    "kick_payout",
			Account: ledger.Account(k.Player),
			Amount:  k.Payout,
		})
	}
	snap := t.Snapshot()
	s.mu.Lock()
	s.handStarted[table.TableID(c.Param("tableId"))] = s.clk.Now()
	s.mu.Unlock()
	metrics.HandsStarted.WithLabelValues(c.Param("tableId"), string(snap.GameType)).Inc()
	s.dispatch(c.Request.Context(), ev.SideEffects)
	c.JSON(http.StatusOK, gin.H{"events": ev, "table": snap})
}

type depositRequest struct {
	PlayerID string `json:"playerId"`
	Amount   int64  `json:"amount"`
}

func (s *Server) depositToTable(c *gin.Context) {
	t, ok := s.lookupTable(c)
	if !ok {
		return
	}
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := t.Deposit(table.PlayerID(req.PlayerID), req.Amount); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"queued": true})
}

type updateBlindsRequest struct {
	SmallBlind int64 `json:"smallBlind"`
	BigBlind   int64 `json:"bigBlind"`
}

func (s *Server) updateBlinds(c *gin.Context) {
	t, ok := s.lookupTable(c)
	if !ok {
		return
	}
	var req updateBlindsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := t.UpdateBlinds(req.SmallBlind, req.BigBlind, table.AnteConfig{}); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"queued": true})
}

func (s *Server) pauseTable(c *gin.Context) {
	t, ok := s.lookupTable(c)
	if !ok {
		return
	}
	t.RequestPause()
	_ = s.directory.SetPaused(table.TableID(c.Param("tableId")), true)
	c.JSON(http.StatusOK, gin.H{"queued": true})
}

func (s *Server) resumeTable(c *gin.Context) {
	t, ok := s.lookupTable(c)
	if !ok {
		return
	}
	t.Resume()
	_ = s.directory.SetPaused(table.TableID(c.Param("tableId")), false)
	c.JSON(http.StatusOK, gin.H{"resumed": true})
}

type autoCheckFoldRequest struct {
	PlayerID string `json:"playerId"`
	Enabled  bool   `json:"enabled"`
}

func (s *Server) setAutoCheckFold(c *gin.Context) {
	t, ok := s.lookupTable(c)
	if !ok {
		return
	}
	var req autoCheckFoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := t.SetAutoCheckFold(table.PlayerID(req.PlayerID), req.Enabled); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": req.Enabled})
}

func (s *Server) withdrawFromTable(c *gin.Context) {
	t, ok := s.lookupTable(c)
	if !ok {
		return
	}
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	eff, err := t.Withdraw(table.PlayerID(req.PlayerID), req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.dispatch(c.Request.Context(), []table.PendingSideEffect{eff})
	c.JSON(http.StatusOK, gin.H{"withdrawn": req.Amount})
}

func (s *Server) getNotifications(c *gin.Context) {
	s.getTable(c) // polling surface reuses the same snapshot (spec.md §4.3.1)
}

func (s *Server) getFreeSeatIndex(c *gin.Context) {
	t, ok := s.lookupTable(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"freeSeatIndex": t.Snapshot().FreeSeatIndex})
}

// --- Tournament handlers ---

type createTournamentRequest struct {
	ID            string `json:"id"`
	BuyIn         int64  `json:"buyIn"`
	StartingChips int64  `json:"startingChips"`
	MinPlayers    int    `json:"minPlayers"`
	MaxPlayers    int    `json:"maxPlayers"`
	Type          string `json:"type"` // "", "freeroll", "spin_and_go"
}

func (s *Server) createTournament(c *gin.Context) {
	var req createTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg := tournament.Config{
		ID:            req.ID,
		Currency:      ledger.Currency{Kind: ledger.Fake},
		BuyIn:         req.BuyIn,
		StartingChips: req.StartingChips,
		MinPlayers:    req.MinPlayers,
		MaxPlayers:    req.MaxPlayers,
		StartTime:     s.clk.Now(),
		Speed: tournament.SpeedProfile{
			Kind:   tournament.Regular,
			Levels: []tournament.BlindLevel{{SmallBlind: 5, BigBlind: 10, Duration: 10 * time.Minute}},
		},
		GraceWindow: 30 * time.Second,
	}

	var tn *tournament.Tournament
	switch req.Type {
	case "spin_and_go":
		multiplier, err := tournament.DrawSpinGoMultiplier(s.rngSrc)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		tn = tournament.NewSpinAndGo(cfg, s.clk, multiplier)
	case "freeroll":
		cfg.TournamentType = tournament.TypeFreeroll
		cfg.BuyIn = 0
		tn = tournament.New(cfg, s.clk)
	default:
		tn = tournament.New(cfg, s.clk)
	}

	s.mu.Lock()
	s.tournaments[req.ID] = tn
	s.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{"tournamentId": req.ID})
}

func (s *Server) lookupTournament(c *gin.Context) (*tournament.Tournament, bool) {
	s.mu.RLock()
	tn, ok := s.tournaments[c.Param("tournamentId")]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "tournament not found"})
	}
	return tn, ok
}

type tournamentPlayerRequest struct {
	PlayerID string `json:"playerId"`
	Wallet   string `json:"wallet"`
}

func (s *Server) runTournamentOp(c *gin.Context, op func(tn *tournament.Tournament, p table.PlayerID, wallet ledger.Account) (tournament.Events, error)) {
	tn, ok := s.lookupTournament(c)
	if !ok {
		return
	}
	var req tournamentPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ev, err := op(tn, table.PlayerID(req.PlayerID), ledger.Account(req.Wallet))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.dispatch(c.Request.Context(), ev.SideEffects)
	c.JSON(http.StatusOK, ev)
}

func (s *Server) userJoinTournament(c *gin.Context) {
	s.runTournamentOp(c, func(tn *tournament.Tournament, p table.PlayerID, w ledger.Account) (tournament.Events, error) {
		return tn.Register(p, w)
	})
}

func (s *Server) userRebuy(c *gin.Context) {
	s.runTournamentOp(c, func(tn *tournament.Tournament, p table.PlayerID, w ledger.Account) (tournament.Events, error) {
		return tn.Rebuy(p, w)
	})
}

func (s *Server) userReentry(c *gin.Context) {
	s.runTournamentOp(c, func(tn *tournament.Tournament, p table.PlayerID, w ledger.Account) (tournament.Events, error) {
		return tn.Reentry(p, w)
	})
}

func (s *Server) userAddon(c *gin.Context) {
	s.runTournamentOp(c, func(tn *tournament.Tournament, p table.PlayerID, w ledger.Account) (tournament.Events, error) {
		return tn.Addon(p, w)
	})
}

func (s *Server) userLeaveTournament(c *gin.Context) {
	tn, ok := s.lookupTournament(c)
	if !ok {
		return
	}
	tn.HandlePlayerBusted(table.PlayerID(c.Param("playerId")), s.clk.Now())
	c.JSON(http.StatusOK, gin.H{"busted": true})
}

func (s *Server) handleUserLosing(c *gin.Context) {
	s.userLeaveTournament(c)
}

func (s *Server) getLeaderboard(c *gin.Context) {
	tn, ok := s.lookupTournament(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": tn.State().String(), "playerCount": tn.PlayerCount()})
}

func (s *Server) getLiveLeaderboard(c *gin.Context) {
	s.getLeaderboard(c)
}

func (s *Server) distributeWinnings(c *gin.Context) {
	tn, ok := s.lookupTournament(c)
	if !ok {
		return
	}
	ev := tn.ResolveGraceTimers(s.clk.Now())
	s.dispatch(c.Request.Context(), ev.SideEffects)
	if ev.Completed {
		s.publish(c.Request.Context(), analytics.HandEvent{
			EventType:    "tournament_complete",
			TournamentID: c.Param("tournamentId"),
			Timestamp:    s.clk.Now(),
		})
	}
	c.JSON(http.StatusOK, ev)
}

func (s *Server) cancelTournament(c *gin.Context) {
	tn, ok := s.lookupTournament(c)
	if !ok {
		return
	}
	ev := tn.Cancel()
	s.dispatch(c.Request.Context(), ev.SideEffects)
	c.JSON(http.StatusOK, ev)
}

// tick drives blind escalation, elimination grace timers and
// rebalancing for every live tournament — the host-level loop a prior
// gameLoop goroutine played for a single table, now polled across every
// tournament from one background ticker.
func (s *Server) tick() {
	now := s.clk.Now()
	s.mu.RLock()
	tns := make(map[string]*tournament.Tournament, len(s.tournaments))
	for id, tn := range s.tournaments {
		tns[id] = tn
	}
	s.mu.RUnlock()

	for id, tn := range tns {
		before := tn.State()
		tickEv, err := tn.Tick(now)
		if err != nil {
			log.Printf("pokerd: tournament %s tick: %v", id, err)
		}
		s.dispatch(context.Background(), tickEv.SideEffects)
		if level := tickEv.BlindsChanged; level != nil {
			// fan the new level out to every running table; it takes
			// effect at each table's next hand boundary (spec §4.5.2).
			for _, tableID := range tn.TableIDs() {
				t, ok := s.lookupTableByID(tableID)
				if !ok {
					continue
				}
				if err := t.UpdateBlinds(level.SmallBlind, level.BigBlind, level.TableAnte()); err != nil {
					log.Printf("pokerd: tournament %s update blinds on table %s: %v", id, tableID, err)
				}
			}
		}
		if before != tournament.Running && tn.State() == tournament.Running {
			metrics.TournamentsStarted.WithLabelValues("regular").Inc()
		}
		ev := tn.ResolveGraceTimers(now)
		s.dispatch(context.Background(), ev.SideEffects)
		if len(ev.Eliminated) > 0 {
			metrics.TournamentEliminations.WithLabelValues(id).Add(float64(len(ev.Eliminated)))
		}
		for _, award := range ev.Payouts {
			metrics.PrizePoolPaid.WithLabelValues(id).Add(float64(award.Amount))
		}
		moves := tn.Balance(2, 9, now)
		if len(moves) > 0 {
			metrics.TournamentRebalances.WithLabelValues(id).Add(float64(len(moves)))
		}
		for _, m := range moves {
			s.applyMove(id, m)
		}
	}
}

// applyMove relocates one occupied seat from the balancer's source
// table to its destination, the host-level half of internal/tournament's
// pure Balance (spec.md §4.6) that needs to touch actual Table state.
func (s *Server) applyMove(tournamentID string, m tournament.Move) {
	s.mu.RLock()
	from, fromOK := s.tables[table.TableID(m.From)]
	s.mu.RUnlock()
	if !fromOK {
		return
	}
	snap := from.Snapshot()
	if len(snap.Players) == 0 {
		return
	}
	player := snap.Players[0].ID
	if err := from.RequestMove(player, table.TableID(m.To)); err != nil {
		log.Printf("pokerd: tournament %s balance move %s->%s failed: %v", tournamentID, m.From, m.To, err)
	}
}

func main() {
	router := gin.Default()
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	server, err := NewServer()
	if err != nil {
		log.Fatalf("pokerd: %v", err)
	}

	router.POST("/api/tables", server.createTable)
	router.GET("/api/tables", server.listTables)
	router.GET("/api/quick-join", server.quickJoin)
	router.GET("/api/tables/:tableId", server.getTable)
	router.POST("/api/tables/:tableId/join", server.joinTable)
	router.POST("/api/tables/:tableId/leave/:playerId", server.leaveTable)
	router.POST("/api/tables/:tableId/kick/:playerId", server.kickPlayer)
	router.POST("/api/tables/:tableId/bet/:playerId", server.placeBet)
	router.POST("/api/tables/:tableId/fold/:playerId", server.foldAction)
	router.POST("/api/tables/:tableId/check/:playerId", server.checkAction)
	router.POST("/api/tables/:tableId/sit-in/:playerId", server.sitIn)
	router.POST("/api/tables/:tableId/sit-out/:playerId", server.sitOut)
	router.POST("/api/tables/:tableId/timer-expired/:playerId", server.handleTimerExpired)
	router.POST("/api/tables/:tableId/start-hand", server.startHand)
	router.POST("/api/tables/:tableId/deposit", server.depositToTable)
	router.POST("/api/tables/:tableId/withdraw", server.withdrawFromTable)
	router.POST("/api/tables/:tableId/auto-check-fold", server.setAutoCheckFold)
	router.POST("/api/tables/:tableId/blinds", server.updateBlinds)
	router.POST("/api/tables/:tableId/pause", server.pauseTable)
	router.POST("/api/tables/:tableId/resume", server.resumeTable)
	router.GET("/api/tables/:tableId/notifications", server.getNotifications)
	router.GET("/api/tables/:tableId/free-seat", server.getFreeSeatIndex)
	router.GET("/ws/:tableId", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("pokerd: websocket upgrade: %v", err)
			return
		}
		defer conn.Close()
		t, ok := server.lookupTableByID(table.TableID(c.Param("tableId")))
		if !ok {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			if err := conn.WriteJSON(t.Snapshot()); err != nil {
				return
			}
		}
	})

	router.POST("/api/tournaments", server.createTournament)
	router.POST("/api/tournaments/:tournamentId/join", server.userJoinTournament)
	router.POST("/api/tournaments/:tournamentId/leave/:playerId", server.userLeaveTournament)
	router.POST("/api/tournaments/:tournamentId/rebuy", server.userRebuy)
	router.POST("/api/tournaments/:tournamentId/reentry", server.userReentry)
	router.POST("/api/tournaments/:tournamentId/addon", server.userAddon)
	router.POST("/api/tournaments/:tournamentId/busted/:playerId", server.handleUserLosing)
	router.GET("/api/tournaments/:tournamentId/leaderboard", server.getLeaderboard)
	router.GET("/api/tournaments/:tournamentId/leaderboard/live", server.getLiveLeaderboard)
	router.POST("/api/tournaments/:tournamentId/distribute", server.distributeWinnings)
	router.POST("/api/tournaments/:tournamentId/cancel", server.cancelTournament)

	ticker := time.NewTicker(time.Second)
	stopTick := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				server.tick()
			case <-stopTick:
				return
			}
		}
	}()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("pokerd: shutting down")
		ticker.Stop()
		close(stopTick)
		if server.publisher != nil {
			_ = server.publisher.Close()
		}
		os.Exit(0)
	}()

	port := os.Getenv("POKERD_PORT")
	if port == "" {
		port = "3002"
	}
	log.Printf("pokerd listening on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("pokerd: %v", err)
	}
}

func (s *Server) lookupTableByID(id table.TableID) (*table.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[id]
	return t, ok
}
