package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"triagem-llm/internal/config"
	"triagem-llm/internal/db"
	"triagem-llm/internal/llm"
	"triagem-llm/internal/repository"
	"triagem-llm/internal/service"
)

// Chat de triagem no terminal: abre uma sessão anônima e conversa com o
// mesmo pipeline do serviço HTTP. Comandos: "triagem" extrai o registro
// da sessão atual; "sair" encerra.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal(err)
	}

	engine := llm.NewOpenAIClient(cfg.EngineBaseURL, cfg.EngineAPIKey, cfg.EngineModel, cfg.EngineTimeout())
	convRepo := repository.NewPgConversationRepository(pool)
	chatSvc := service.NewChatService(engine, convRepo, service.NewNoopSessionLocker(), logger, cfg.EngineTimeout())
	triageSvc := service.NewTriageService(engine, convRepo, logger, cfg.EngineTimeout())

	conv, err := chatSvc.StartConversation(ctx, "")
	if err != nil {
		log.Fatalf("criar conversa: %v", err)
	}

	fmt.Println("---- Triagem (escreva 'triagem' para extrair, 'sair' para terminar) ----")
	fmt.Printf("Assistente > %s\n", conv.Messages[0].Body)

	for {
		fmt.Print("Você > ")
		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "sair") || strings.EqualFold(text, "exit") {
			fmt.Println("Encerrando...")
			return
		}
		if strings.EqualFold(text, "triagem") {
			record, err := triageSvc.Recompute(ctx, conv.ID)
			if err != nil {
				fmt.Printf("erro extraindo triagem: %v\n", err)
				continue
			}
			pretty, _ := json.MarshalIndent(record, "", "  ")
			fmt.Printf("Triagem > %s\n", pretty)
			continue
		}

		result, err := chatSvc.PostMessage(ctx, conv.ID, text)
		if err != nil {
			fmt.Printf("erro gerando resposta: %v\n", err)
			continue
		}
		fmt.Printf("Assistente > %s\n", result.Reply)
	}
}
