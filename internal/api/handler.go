package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"upishield/internal/chat"
	"upishield/internal/domain"
	"upishield/internal/extract"
	"upishield/internal/honeypot"
	"upishield/internal/llm"
	"upishield/internal/mlclient"
	"upishield/internal/pipeline"
	"upishield/internal/scoring"
	"upishield/internal/store"
)

// maxQRImageBytes is the upload cap spec.md §5 places on QR image uploads.
const maxQRImageBytes = 5 << 20

// Handler holds the dependencies shared across all HTTP handlers.
type Handler struct {
	blacklist *store.BlacklistStore
	domains   *store.PhishingDomainStore
	orch      *chat.Orchestrator
	honeypot  *honeypot.Engine
	llmClient *llm.Client
	mlClient  *mlclient.Client

	scamThreshold float64
}

// NewHandler creates a Handler wired to the given dependencies.
func NewHandler(blacklist *store.BlacklistStore, domains *store.PhishingDomainStore, orch *chat.Orchestrator, hp *honeypot.Engine, llmClient *llm.Client, mlClient *mlclient.Client, scamThreshold float64) *Handler {
	return &Handler{
		blacklist:     blacklist,
		domains:       domains,
		orch:          orch,
		honeypot:      hp,
		llmClient:     llmClient,
		mlClient:      mlClient,
		scamThreshold: scamThreshold,
	}
}

// ─── POST /api/upi/scan ───────────────────────────────────────────────────────

func (h *Handler) ScanMessage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	if req.Message == "" {
		badRequest(w, "EMPTY_MESSAGE", "message must not be empty")
		return
	}

	extracted, err := extract.ExtractWithLLM(r.Context(), h.llmClient, req.Message)
	if err != nil {
		badRequest(w, "EMPTY_MESSAGE", err.Error())
		return
	}

	var amount float64
	if extracted.Amount != nil {
		amount = *extracted.Amount
	}
	analysis := pipeline.RunModeA(r.Context(), h.llmClient, h.domains, pipeline.ModeAInput{
		Text:          req.Message,
		Amount:        amount,
		ReceiverUPI:   extracted.ReceiverUPI,
		IsNewPayee:    extracted.IsNewPayee,
		ScamThreshold: h.scamThreshold,
	})

	ok(w, map[string]any{
		"status":        "analyzed",
		"extracted":     extracted,
		"analysis":      analysis,
		"responseTimeMs": time.Since(start).Milliseconds(),
	})
}

// ─── POST /api/upi/scan-qr ────────────────────────────────────────────────────

func (h *Handler) ScanQR(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxQRImageBytes)
	if err := r.ParseMultipartForm(maxQRImageBytes); err != nil {
		badRequest(w, "UPLOAD_TOO_LARGE", "qrImage must be at most 5MB")
		return
	}

	file, _, err := r.FormFile("qrImage")
	if err != nil {
		badRequest(w, "MISSING_FILE", "qrImage file is required")
		return
	}
	defer file.Close()

	// QR image decoding is an external collaborator out of scope for this
	// service; the decoded payload string is expected as the qrPayload
	// form field when no decoder is wired in front of this endpoint.
	payload := r.FormValue("qrPayload")
	if payload == "" {
		if _, err := io.ReadAll(file); err != nil {
			internalError(w)
			return
		}
		badRequest(w, "NO_QR_FOUND", "no UPI QR code could be decoded from the image")
		return
	}

	result := scoring.ParseQRPayload(payload)
	if !result.OK {
		badRequest(w, "NO_QR_FOUND", result.Error)
		return
	}

	score, indicators := scoring.ScoreQRPayload(result)
	verdict := domain.RiskVerdict{
		RiskScore:          score,
		RiskLevel:          domain.Band(score),
		Indicators:         domain.Dedup(indicators),
		RecommendedActions: scoring.RecommendedActions(score, &domain.FraudCategory{Name: domain.CategoryQRScam}),
	}

	ok(w, map[string]any{
		"extracted": map[string]any{
			"upiId":        result.Payload.PayeeUPI,
			"merchantName": result.Payload.PayeeName,
			"amount":       result.Payload.Amount,
		},
		"analysis": verdict,
	})
}

// ─── POST /api/upi/validate-transaction ──────────────────────────────────────

func (h *Handler) ValidateTransaction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		Amount      float64 `json:"amount"`
		ReceiverUPI string  `json:"receiverUPI"`
		Description string  `json:"description"`
		NewPayee    bool    `json:"newPayee"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	if req.ReceiverUPI == "" {
		badRequest(w, "MISSING_RECEIVER_UPI", "receiverUPI is required")
		return
	}

	entry, blacklisted := h.blacklist.FindMatching(store.MatchCriteria{
		UPIIDs: []string{req.ReceiverUPI},
	})
	if blacklisted {
		verdict := domain.RiskVerdict{
			RiskScore:          100,
			RiskLevel:          domain.RiskLevelCritical,
			Indicators:         []string{"Receiver UPI is on the blacklist: " + entry.Reason},
			RecommendedActions: scoring.RecommendedActions(100, nil),
		}
		ok(w, map[string]any{
			"riskScore":           verdict.RiskScore,
			"riskLevel":           verdict.RiskLevel,
			"isFraud":             true,
			"shouldBlock":         true,
			"message":             "This UPI ID is in our blacklist for confirmed scam activity.",
			"triggeredIndicators": verdict.Indicators,
			"recommendations":     verdict.RecommendedActions,
			"blacklisted":         true,
			"responseTimeMs":      time.Since(start).Milliseconds(),
		})
		return
	}

	tx := domain.NewTransaction()
	tx.Amount = req.Amount
	tx.ReceiverUPI = req.ReceiverUPI
	tx.Description = req.Description
	tx.IsNewPayee = req.NewPayee
	tx.Type = domain.TxnP2P

	rule := scoring.ScoreTransaction(tx)
	rule = scoring.AugmentWithLLM(r.Context(), h.llmClient, tx, rule)

	classifyText := fmt.Sprintf("%s %s %.2f", req.Description, req.ReceiverUPI, req.Amount)
	classification := scoring.ScoreText(r.Context(), h.llmClient, classifyText, h.scamThreshold)

	combinedRule := rule.Score
	if classifierScore := int(classification.Confidence * 100); classifierScore > combinedRule {
		combinedRule = classifierScore
	}

	var mlProbability float64
	prediction, _ := h.mlClient.Predict(r.Context(), mlclient.Request{
		Text:        classifyText,
		Amount:      &req.Amount,
		ReceiverUPI: req.ReceiverUPI,
		Description: req.Description,
		NewPayee:    req.NewPayee,
	})
	if prediction != nil {
		mlProbability = prediction.Probability
	}

	finalScore := scoring.FuseAdvanced(scoring.AdvancedFusionInput{
		RuleScore:     combinedRule,
		MLProbability: mlProbability,
		MLAvailable:   prediction != nil,
		IsBlacklisted: false,
	})
	riskLevel := domain.Band(finalScore)

	ruleIndicators := make([]string, 0, len(rule.Indicators))
	for _, ind := range rule.Indicators {
		ruleIndicators = append(ruleIndicators, ind.Label)
	}
	indicators := domain.Dedup(append(ruleIndicators, classification.Indicators...))

	shouldBlock := finalScore >= 70
	if shouldBlock {
		h.blacklist.Upsert(domain.PayValidationScammerID, []string{req.ReceiverUPI}, nil, "Confirmed scam activity")
	}

	message := "Transaction appears safe."
	if finalScore >= 70 {
		message = "This transaction shows strong indicators of fraud. We recommend blocking it."
	} else if finalScore >= 40 {
		message = "This transaction has some risk indicators. Please verify the receiver before proceeding."
	}

	ok(w, map[string]any{
		"riskScore":           finalScore,
		"riskLevel":           riskLevel,
		"isFraud":             finalScore >= 40,
		"shouldBlock":         shouldBlock,
		"message":             message,
		"triggeredIndicators": indicators,
		"recommendations":     scoring.RecommendedActions(finalScore, rule.FraudCategory),
		"responseTimeMs":      time.Since(start).Milliseconds(),
	})
}

// ─── POST /api/chat/send ──────────────────────────────────────────────────────

func (h *Handler) ChatSend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
		ScammerID string `json:"scammerId"`
		VictimID  string `json:"victimId"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	if req.SessionID == "" || req.ScammerID == "" || req.Text == "" {
		badRequest(w, "MISSING_FIELDS", "sessionId, scammerId and text are required")
		return
	}

	result := h.orch.HandleScammerTurn(r.Context(), req.SessionID, req.ScammerID, req.VictimID, req.Text)

	ok(w, map[string]any{
		"diverted":      result.Diverted,
		"risk":          result.Risk,
		"honeypotReply": result.HoneypotReply,
	})
}

// ─── POST /api/chat/victim-reply ──────────────────────────────────────────────

func (h *Handler) ChatVictimReply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be valid JSON")
		return
	}

	err := h.orch.VictimReply(req.SessionID, req.Text)
	switch err {
	case nil:
		ok(w, map[string]string{"status": "success"})
	case chat.ErrSessionNotFound:
		notFound(w, fmt.Sprintf("session '%s' not found", req.SessionID))
	case chat.ErrBlockedByDivert:
		forbidden(w, "This conversation is currently flagged as high risk. Your reply was not delivered.")
	default:
		internalError(w)
	}
}

// ─── GET /api/chat/session/:sessionId ─────────────────────────────────────────

func (h *Handler) ChatSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	ok(w, h.orch.Project(sessionID))
}

// ─── POST /api/honeypot ───────────────────────────────────────────────────────

func (h *Handler) Honeypot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		SessionID string `json:"sessionId"`
		Message   struct {
			Sender string `json:"sender"`
			Text   string `json:"text"`
		} `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	if req.SessionID == "" || req.Message.Text == "" {
		badRequest(w, "MISSING_FIELDS", "sessionId and message.text are required")
		return
	}

	result := h.honeypot.Engage(r.Context(), req.SessionID, req.Message.Sender, req.Message.Text)
	session := result.Session

	var lastConfidence float64
	if n := len(session.ScamScores); n > 0 {
		lastConfidence = session.ScamScores[n-1]
	}

	ok(w, map[string]any{
		"reply": result.Reply,
		"debug": map[string]any{
			"sessionId":             session.SessionID,
			"scamDetected":          session.ScamDetected,
			"confidence":            session.ScamConfidence(),
			"lastMessageConfidence": lastConfidence,
			"messageCount":          session.MessageCount,
			"responseTimeMs":        time.Since(start).Milliseconds(),
			"callbackSent":          session.CallbackSent,
		},
	})
}

// ─── GET /api/honeypot/session/:sessionId ─────────────────────────────────────

func (h *Handler) HoneypotSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	session, found := h.honeypot.Get(sessionID)
	if !found {
		notFound(w, fmt.Sprintf("honeypot session '%s' not found", sessionID))
		return
	}
	ok(w, session)
}

// ─── POST /api/honeypot/session/:sessionId/callback ───────────────────────────

func (h *Handler) HoneypotCallback(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	session, found := h.honeypot.Get(sessionID)
	if !found {
		notFound(w, fmt.Sprintf("honeypot session '%s' not found", sessionID))
		return
	}
	if !session.ScamDetected {
		badRequest(w, "NOT_SCAM_DETECTED", "cannot trigger a callback before a session is flagged as scamDetected")
		return
	}

	sent := h.honeypot.TriggerCallback(r.Context(), sessionID)
	ok(w, map[string]bool{"callbackSent": sent})
}

// ─── DELETE /api/honeypot/session/:sessionId ───────────────────────────────────

func (h *Handler) HoneypotSessionDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	h.honeypot.Delete(sessionID)
	noContent(w)
}
