package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fieldline/sales-copilot/agent/agents/assistants"
	"github.com/fieldline/sales-copilot/agent/agents/orchestrator"
	contractx "github.com/fieldline/sales-copilot/agent/contract"
	llmx "github.com/fieldline/sales-copilot/agent/llm"
	notifyx "github.com/fieldline/sales-copilot/agent/notify"
	statex "github.com/fieldline/sales-copilot/agent/state"
	"github.com/fieldline/sales-copilot/repo"

	configx "github.com/fieldline/sales-copilot/pkg/config"
	_ "github.com/fieldline/sales-copilot/pkg/logger/autoload"
	qstashx "github.com/fieldline/sales-copilot/pkg/qstash"
)

func main() {
	ctx := context.Background()

	dbCfg := configx.MustNew[repo.Config]("DB")
	db, err := repo.NewDB(ctx, *dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	store := repo.New(db)

	redisCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
	sessions, err := statex.NewUpstashRedisStore(*redisCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("session store init failed")
	}

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	models, err := assistants.NewRegistry(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("model registry init failed")
	}

	copilot, err := orchestrator.New(orchestrator.Deps{
		Store:    sessions,
		Routes:   store,
		Catalog:  store,
		Orders:   store,
		Metrics:  store,
		Models:   models,
		Notifier: buildNotifier(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("orchestrator init failed")
	}

	runChat(ctx, copilot, store)
}

// buildNotifier is optional wiring: without QStash credentials the day end
// simply isn't published anywhere.
func buildNotifier() contractx.Notifier {
	qstashCfg, err := configx.New[qstashx.Config]("QSTASH")
	if err != nil {
		log.Info().Msg("qstash not configured, day-end notifications disabled")
		return nil
	}
	notifyCfg, err := configx.New[notifyx.Config]("NOTIFY")
	if err != nil {
		log.Info().Msg("notify destination not configured, day-end notifications disabled")
		return nil
	}

	client, err := qstashx.NewClient(*qstashCfg)
	if err != nil {
		log.Warn().Err(err).Msg("qstash client init failed, day-end notifications disabled")
		return nil
	}
	notifier, err := notifyx.NewQStashNotifier(client, *notifyCfg)
	if err != nil {
		log.Warn().Err(err).Msg("notifier init failed, day-end notifications disabled")
		return nil
	}
	return notifier
}

func runChat(ctx context.Context, copilot *orchestrator.Orchestrator, store *repo.Store) {
	in := bufio.NewScanner(os.Stdin)

	repID, err := chooseRep(ctx, in, store)
	if err != nil {
		log.Fatal().Err(err).Msg("rep selection failed")
	}

	sessionID := uuid.NewString()
	weekday := time.Now().Weekday().String()

	greeting, err := copilot.StartDay(ctx, sessionID, repID, weekday)
	if err != nil {
		log.Fatal().Err(err).Msg("start day failed")
	}
	fmt.Println(greeting)

	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return
		}

		reply, done, err := dispatch(ctx, copilot, sessionID, line)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Println(reply)
		if done {
			return
		}
	}
}

// dispatch separates the cart commands from conversational turns.
//
//	cart <product_id> <qty>   stage an order line
//	submit [feedback]         close the visit with the staged cart
func dispatch(ctx context.Context, copilot *orchestrator.Orchestrator, sessionID, line string) (string, bool, error) {
	fields := strings.Fields(line)

	switch strings.ToLower(fields[0]) {
	case "cart", "add":
		if len(fields) != 3 {
			return "usage: cart <product_id> <quantity>", false, nil
		}
		qty, err := strconv.Atoi(fields[2])
		if err != nil || qty <= 0 {
			return "quantity must be a positive number", false, nil
		}
		reply, err := copilot.AddCartLine(ctx, sessionID, contractx.CartLine{
			ProductID: fields[1],
			Quantity:  qty,
		})
		if err != nil {
			return "", false, err
		}
		return reply, false, nil

	case "submit":
		feedback := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
		return copilot.SubmitOrder(ctx, sessionID, feedback)
	}

	return copilot.HandleMessage(ctx, sessionID, line)
}

func chooseRep(ctx context.Context, in *bufio.Scanner, store *repo.Store) (string, error) {
	reps, err := store.ActiveReps(ctx)
	if err != nil {
		return "", err
	}
	if len(reps) == 0 {
		return "", fmt.Errorf("no active sales reps found")
	}

	fmt.Println("Select a sales rep:")
	for i, rep := range reps {
		fmt.Printf("%d. %s (%s)\n", i+1, rep.Name, rep.ID)
	}

	for {
		fmt.Print("rep> ")
		if !in.Scan() {
			return "", fmt.Errorf("input closed")
		}
		choice := strings.TrimSpace(in.Text())

		if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(reps) {
			return reps[n-1].ID, nil
		}
		for _, rep := range reps {
			if strings.EqualFold(choice, rep.ID) {
				return rep.ID, nil
			}
		}
		fmt.Println("Pick a number from the list or type a rep ID.")
	}
}
