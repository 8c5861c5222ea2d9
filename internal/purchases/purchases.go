package purchases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"codeberg.org/explainer/server/internal/ledger"
	"codeberg.org/explainer/server/internal/logger"
)

// Config holds the Stripe credentials and the URL checkout redirects
// back to
type Config struct {
	SecretKey     string
	WebhookSecret string
	BaseURL       string

	// simulated purchases are refused when this is "production"
	Environment string
}

// Service sells credit packs. Stripe checkout is used when credentials
// are configured; the simulated purchase path credits the ledger
// directly and exists for local development and the test environment
type Service struct {
	ledger *ledger.Ledger
	store  Store
	config Config
}

// creates the purchase service. an empty SecretKey disables the Stripe
// checkout path but keeps simulated purchases working
func New(l *ledger.Ledger, store Store, config Config) *Service {
	if config.SecretKey != "" {
		stripe.Key = config.SecretKey
	}

	return &Service{
		ledger: l,
		store:  store,
		config: config,
	}
}

// Packs returns the purchasable credit packs
func (s *Service) Packs() []Pack {
	return packs
}

// PackByID returns ErrUnknownPack for IDs outside the catalog
func (s *Service) PackByID(id string) (*Pack, error) {
	for _, p := range packs {
		if p.ID == id {
			pack := p
			return &pack, nil
		}
	}

	return nil, ErrUnknownPack
}

// StripeEnabled reports whether checkout sessions can be created
func (s *Service) StripeEnabled() bool {
	return s.config.SecretKey != ""
}

// SimulatePurchase credits a pack without payment. only available
// outside production; real deployments sell packs through Stripe
func (s *Service) SimulatePurchase(ctx context.Context, userID, packID string) (*ledger.User, error) {
	if s.config.Environment == "production" {
		return nil, ErrSimulationDisabled
	}

	pack, err := s.PackByID(packID)
	if err != nil {
		return nil, err
	}

	user, err := s.ledger.Credit(ctx, userID, pack.Credits, fmt.Sprintf("Purchased %s", pack.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to credit purchase: %w", err)
	}

	logger.Info("simulated purchase settled",
		"user_id", userID, "pack", pack.ID, "credits", pack.Credits)

	return user, nil
}

// CreateCheckoutSession creates a one-time Stripe payment for a pack and
// returns the hosted checkout URL
func (s *Service) CreateCheckoutSession(_ context.Context, userID, packID string) (string, error) {
	if !s.StripeEnabled() {
		return "", fmt.Errorf("stripe is not configured")
	}

	pack, err := s.PackByID(packID)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.config.BaseURL + "/purchase/success"),
		CancelURL:  stripe.String(s.config.BaseURL + "/purchase/cancelled"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("usd"),
					UnitAmount: stripe.Int64(pack.PriceCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(pack.Name),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}

	params.AddMetadata("user_id", userID)
	params.AddMetadata("pack_id", pack.ID)

	result, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return result.URL, nil
}

// HandleWebhook verifies the Stripe signature and settles the event
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.config.WebhookSecret)
	if err != nil {
		return fmt.Errorf("webhook signature verification failed: %w", err)
	}

	return s.ProcessEvent(ctx, event)
}

// ProcessEvent settles a verified payment event. each event credits the
// ledger at most once, no matter how many times Stripe delivers it
func (s *Service) ProcessEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		return s.settleCheckout(ctx, event)

	default:
		logger.Debug("ignoring stripe event", "type", event.Type)
		return nil
	}
}

func (s *Service) settleCheckout(ctx context.Context, event stripe.Event) error {
	var checkoutSession stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &checkoutSession); err != nil {
		return fmt.Errorf("failed to parse checkout.session.completed: %w", err)
	}

	userID := checkoutSession.Metadata["user_id"]
	packID := checkoutSession.Metadata["pack_id"]

	if userID == "" || packID == "" {
		return fmt.Errorf("checkout session %s is missing purchase metadata", checkoutSession.ID)
	}

	pack, err := s.PackByID(packID)
	if err != nil {
		return fmt.Errorf("checkout session %s references %s: %w", checkoutSession.ID, packID, err)
	}

	// dedupe before crediting: a replayed event stops here
	if err := s.store.MarkProcessed(ctx, event.ID); err != nil {
		return err
	}

	if _, err := s.ledger.Credit(ctx, userID, pack.Credits, fmt.Sprintf("Purchased %s", pack.Name)); err != nil {
		// release the event so stripe's retry can settle the purchase
		// instead of bouncing off the dedupe row
		if unmarkErr := s.store.Unmark(ctx, event.ID); unmarkErr != nil {
			logger.ErrorErr(unmarkErr, "failed to release payment event after credit failure",
				"event_id", event.ID, "user_id", userID)
		}

		return fmt.Errorf("failed to credit purchase: %w", err)
	}

	logger.Info("stripe purchase settled",
		"user_id", userID, "pack", pack.ID, "credits", pack.Credits, "event_id", event.ID)

	return nil
}
