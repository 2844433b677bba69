package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guessbets/guessbets/internal/game"
	"github.com/guessbets/guessbets/internal/roomcode"
)

func TestServerHealth(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.handleHealth(w, req)

	require.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestCreateRoomGeneratesCode(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)
	host := dial(t, ts)

	send(t, host, MessageTypeCreateRoom, CreateRoomData{HostID: "host-1"})

	created := decodeData[RoomCreatedData](t, waitFor(t, host, MessageTypeRoomCreated))
	require.NoError(t, roomcode.Validate(created.RoomID))
	assert.Equal(t, "host-1", created.HostID)

	snap := decodeData[game.Snapshot](t, waitFor(t, host, MessageTypeRoomUpdate))
	assert.Equal(t, created.RoomID, snap.ID)
	assert.Equal(t, game.PhaseLobby, snap.Phase)
	assert.Empty(t, snap.Players)
}

func TestCreateRoomReclaimsHost(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	first := dial(t, ts)
	send(t, first, MessageTypeCreateRoom, CreateRoomData{RoomID: "HST123", HostID: "host-old"})
	waitFor(t, first, MessageTypeRoomCreated)

	// Host reloads their page and creates "again" with a fresh identity
	second := dial(t, ts)
	send(t, second, MessageTypeCreateRoom, CreateRoomData{RoomID: "HST123", HostID: "host-new"})
	created := decodeData[RoomCreatedData](t, waitFor(t, second, MessageTypeRoomCreated))
	assert.Equal(t, "HST123", created.RoomID)
	assert.Equal(t, "host-new", created.HostID)
}

func TestJoinRoomAssignsPlayerID(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	host := dial(t, ts)
	send(t, host, MessageTypeCreateRoom, CreateRoomData{RoomID: "JN4321", HostID: "host-1"})
	waitFor(t, host, MessageTypeRoomCreated)

	player := dial(t, ts)
	send(t, player, MessageTypeJoinRoom, JoinRoomData{
		RoomID: "jn4321", // lowercase on purpose, codes are normalized
		Player: &game.Player{Name: "Ada", Color: "#ff0000"},
	})

	roster := decodeData[PlayersUpdateData](t, waitFor(t, player, MessageTypePlayersUpdate))
	require.Len(t, roster.Players, 1)
	assert.Equal(t, "Ada", roster.Players[0].Name)
	assert.NotEmpty(t, roster.Players[0].ID, "server should assign an id")

	chips := decodeData[ChipsUpdateData](t, waitFor(t, player, MessageTypeChipsUpdate))
	assert.Equal(t, 500, chips.Chips[roster.Players[0].ID])
}

func TestFullRoundOverWebSocket(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	host := dial(t, ts)
	send(t, host, MessageTypeCreateRoom, CreateRoomData{RoomID: "RND001", HostID: "host-1"})
	waitFor(t, host, MessageTypeRoomCreated)

	p1 := dial(t, ts)
	send(t, p1, MessageTypeJoinRoom, JoinRoomData{RoomID: "RND001", Player: &game.Player{ID: "p1", Name: "Ada"}})
	waitFor(t, p1, MessageTypeRoomUpdate)

	p2 := dial(t, ts)
	send(t, p2, MessageTypeJoinRoom, JoinRoomData{RoomID: "RND001", Player: &game.Player{ID: "p2", Name: "Grace"}})
	waitFor(t, p2, MessageTypeRoomUpdate)

	send(t, host, MessageTypeStartGame, StartGameData{RoomID: "RND001"})
	started := decodeData[game.RoundStart](t, waitFor(t, p1, MessageTypeGameStarted))
	require.Equal(t, 1, started.Round)
	require.NotEmpty(t, started.Question.Text)

	send(t, p1, MessageTypeSubmitAnswer, SubmitAnswerData{RoomID: "RND001", PlayerID: "p1", Guess: 100})
	progress := decodeData[game.AnswerProgress](t, waitFor(t, p1, MessageTypeAnswersUpdate))
	assert.Len(t, progress.Answers, 1)
	assert.Equal(t, 2, progress.Total)

	// Second answer completes the round: tiles go out in the same operation
	send(t, p2, MessageTypeSubmitAnswer, SubmitAnswerData{RoomID: "RND001", PlayerID: "p2", Guess: 200})
	ws := decodeData[game.WagerStart](t, waitFor(t, p2, MessageTypeAnswersRevealed))
	require.Len(t, ws.Tiles, 3)
	assert.True(t, ws.Tiles[0].Smaller)
	assert.Empty(t, ws.ZeroChipPlayers)

	send(t, p1, MessageTypePlaceBet, PlaceBetData{RoomID: "RND001", PlayerID: "p1", TileIndex: 1, Amount: 100})
	bets := decodeData[BetsUpdateData](t, waitFor(t, p1, MessageTypeBetsUpdate))
	require.Len(t, bets.Bets, 1)
	assert.Equal(t, 400, bets.Chips["p1"], "bets are funded at placement")

	send(t, p2, MessageTypePlaceBet, PlaceBetData{RoomID: "RND001", PlayerID: "p2", TileIndex: 2, Amount: 50})
	waitFor(t, p2, MessageTypeBetsUpdate)

	send(t, p1, MessageTypeConfirmWagers, ConfirmWagersData{RoomID: "RND001", PlayerID: "p1"})
	conf := decodeData[game.Confirmation](t, waitFor(t, p1, MessageTypeWagersConfirmed))
	assert.Equal(t, 1, conf.ConfirmedCount)
	assert.False(t, conf.AllConfirmed)

	// Last confirmation settles the round in the same critical section
	send(t, p2, MessageTypeConfirmWagers, ConfirmWagersData{RoomID: "RND001", PlayerID: "p2"})
	settled := decodeData[game.Settlement](t, waitFor(t, p2, MessageTypePayoutResult))
	require.Len(t, settled.Tiles, 3)
	assert.GreaterOrEqual(t, settled.WinningTileIndex, 0)
	assert.Less(t, settled.WinningTileIndex, 3)
	assert.Contains(t, settled.Chips, "p1")
	assert.Contains(t, settled.Chips, "p2")

	send(t, host, MessageTypeNextRound, NextRoundData{RoomID: "RND001"})
	next := decodeData[game.RoundResult](t, waitFor(t, p1, MessageTypeRoundAdvanced))
	assert.Equal(t, game.PhaseQuestion, next.Phase)
	assert.Equal(t, 2, next.Round)
}

func TestErrorCodes(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	send(t, conn, MessageTypePlaceBet, PlaceBetData{RoomID: "NOROOM", PlayerID: "p1", TileIndex: 0, Amount: 10})
	errData := decodeData[ErrorData](t, waitFor(t, conn, MessageTypeError))
	assert.Equal(t, "room_not_found", errData.Code)

	send(t, conn, MessageTypeCreateRoom, CreateRoomData{RoomID: "ERRS01", HostID: "host-1"})
	waitFor(t, conn, MessageTypeRoomCreated)

	send(t, conn, MessageTypeJoinRoom, JoinRoomData{RoomID: "ERRS01"})
	errData = decodeData[ErrorData](t, waitFor(t, conn, MessageTypeError))
	assert.Equal(t, "invalid_message", errData.Code)

	player := dial(t, ts)
	send(t, player, MessageTypeJoinRoom, JoinRoomData{RoomID: "ERRS01", Player: &game.Player{ID: "p1", Name: "Ada"}})
	waitFor(t, player, MessageTypeRoomUpdate)

	// Betting only makes sense in the wager phase
	send(t, player, MessageTypePlaceBet, PlaceBetData{RoomID: "ERRS01", PlayerID: "p1", TileIndex: 0, Amount: 10})
	errData = decodeData[ErrorData](t, waitFor(t, player, MessageTypeError))
	assert.Equal(t, "wrong_phase", errData.Code)

	send(t, player, MessageTypeSetPhase, SetPhaseData{RoomID: "ERRS01", Phase: "intermission"})
	errData = decodeData[ErrorData](t, waitFor(t, player, MessageTypeError))
	assert.Equal(t, "wrong_phase", errData.Code)

	send(t, player, MessageType("bogus"), struct{}{})
	errData = decodeData[ErrorData](t, waitFor(t, player, MessageTypeError))
	assert.Equal(t, "unknown_message_type", errData.Code)
}

func TestRevealAnswerRequiresHost(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	host := dial(t, ts)
	send(t, host, MessageTypeCreateRoom, CreateRoomData{RoomID: "HST777", HostID: "host-1"})
	waitFor(t, host, MessageTypeRoomCreated)

	intruder := dial(t, ts)
	send(t, intruder, MessageTypeJoinRoom, JoinRoomData{RoomID: "HST777", Player: &game.Player{ID: "p1", Name: "Mallory"}})
	waitFor(t, intruder, MessageTypeRoomUpdate)

	send(t, intruder, MessageTypeRevealAnswer, RevealAnswerData{RoomID: "HST777", HostID: "p1"})
	errData := decodeData[ErrorData](t, waitFor(t, intruder, MessageTypeError))
	assert.Equal(t, "unauthorized", errData.Code)
}

func TestDeleteRoomBroadcasts(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	host := dial(t, ts)
	send(t, host, MessageTypeCreateRoom, CreateRoomData{RoomID: "TEARDN", HostID: "host-1"})
	waitFor(t, host, MessageTypeRoomCreated)

	player := dial(t, ts)
	send(t, player, MessageTypeJoinRoom, JoinRoomData{RoomID: "TEARDN", Player: &game.Player{ID: "p1", Name: "Ada"}})
	waitFor(t, player, MessageTypeRoomUpdate)

	send(t, player, MessageTypeDeleteRoom, DeleteRoomData{RoomID: "TEARDN", HostID: "p1"})
	errData := decodeData[ErrorData](t, waitFor(t, player, MessageTypeError))
	assert.Equal(t, "unauthorized", errData.Code)

	send(t, host, MessageTypeDeleteRoom, DeleteRoomData{RoomID: "TEARDN", HostID: "host-1"})
	deleted := decodeData[RoomDeletedData](t, waitFor(t, player, MessageTypeRoomDeleted))
	assert.Equal(t, "TEARDN", deleted.RoomID)

	send(t, player, MessageTypeRoomState, RoomStateData{RoomID: "TEARDN"})
	errData = decodeData[ErrorData](t, waitFor(t, player, MessageTypeError))
	assert.Equal(t, "room_not_found", errData.Code)
}

func TestRoomStateReturnsSnapshot(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	host := dial(t, ts)
	send(t, host, MessageTypeCreateRoom, CreateRoomData{RoomID: "STATEY", HostID: "host-1"})
	waitFor(t, host, MessageTypeRoomCreated)

	send(t, host, MessageTypeUpdateCategories, UpdateCategoriesData{RoomID: "STATEY", Categories: []string{"history"}})
	waitFor(t, host, MessageTypeCategoriesUpdate)

	send(t, host, MessageTypeRoomState, RoomStateData{RoomID: "STATEY"})
	snap := decodeData[game.Snapshot](t, waitFor(t, host, MessageTypeRoomUpdate))
	assert.Equal(t, "STATEY", snap.ID)
	assert.Equal(t, []string{"history"}, snap.Categories)
}

func TestLeaveRoomRefundsAndAnnounces(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	host := dial(t, ts)
	send(t, host, MessageTypeCreateRoom, CreateRoomData{RoomID: "GDBYE1", HostID: "host-1"})
	waitFor(t, host, MessageTypeRoomCreated)

	p1 := dial(t, ts)
	send(t, p1, MessageTypeJoinRoom, JoinRoomData{RoomID: "GDBYE1", Player: &game.Player{ID: "p1", Name: "Ada"}})
	waitFor(t, p1, MessageTypeRoomUpdate)

	p2 := dial(t, ts)
	send(t, p2, MessageTypeJoinRoom, JoinRoomData{RoomID: "GDBYE1", Player: &game.Player{ID: "p2", Name: "Grace"}})
	waitFor(t, p2, MessageTypeRoomUpdate)

	send(t, p2, MessageTypeLeaveRoom, LeaveRoomData{RoomID: "GDBYE1", PlayerID: "p2"})
	left := decodeData[LeftRoomData](t, waitFor(t, p2, MessageTypeLeftRoom))
	assert.Equal(t, "p2", left.PlayerID)

	roster := decodeData[PlayersUpdateData](t, waitFor(t, p1, MessageTypePlayersUpdate))
	require.Len(t, roster.Players, 1)
	assert.Equal(t, "p1", roster.Players[0].ID)
}
