package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/example/storefront-bff/internal/adapter/gateway"
	"github.com/example/storefront-bff/internal/adapter/httpapi"
	"github.com/example/storefront-bff/internal/adapter/natsstan"
	"github.com/example/storefront-bff/internal/usecase"
)

type config struct {
	Addr           string        `env:"HTTP_ADDR" envDefault:":8080"`
	GatewayURL     string        `env:"GATEWAY_URL" envDefault:"http://localhost:8000"`
	GatewayTimeout time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`
	Currency       string        `env:"CURRENCY" envDefault:"usd"`

	StanClusterID string `env:"STAN_CLUSTER_ID" envDefault:"shop-cluster"`
	StanClientID  string `env:"STAN_CLIENT_ID"`
	NatsURL       string `env:"NATS_URL" envDefault:"nats://localhost:4223"`
	StanSubject   string `env:"STAN_SUBJECT" envDefault:"cart-events"`
	StanDurable   string `env:"STAN_DURABLE" envDefault:"storefront-durable"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("config: %v", err)
	}

	gw, err := gateway.New(cfg.GatewayURL, cfg.GatewayTimeout)
	if err != nil {
		log.Fatalf("gateway client: %v", err)
	}

	session := usecase.NewIdentitySession(gw)
	cart := usecase.NewCartStore(gw)
	checkout := usecase.NewCheckoutOrchestrator(gw, gw, gw, cfg.Currency)

	// корзина следует за переходами личности
	session.Subscribe(cart.OnIdentityChanged)

	sub := &natsstan.Subscriber{
		ClusterID: cfg.StanClusterID,
		ClientID:  cfg.StanClientID,
		URL:       cfg.NatsURL,
		Subject:   cfg.StanSubject,
		Durable:   cfg.StanDurable,
	}
	go func() {
		if err := sub.Subscribe(ctx, cart.HandleEvent); err != nil {
			log.Printf("cart events subscribe: %v", err)
		}
	}()

	// личность разрешается первой; подписка выше дотянет корзину
	session.Resolve(ctx)

	api := httpapi.NewServer(session, cart, checkout, gw)
	srv := &http.Server{Addr: cfg.Addr, Handler: api.Router}
	go func() {
		log.Printf("http listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = srv.Shutdown(shutdownCtx)
}
