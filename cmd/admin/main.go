// Ferramenta de linha de comando para a equipe de operação consultar o
// estado do portal: fila de mediação, denúncias por protocolo e caixa de
// saída de e-mails.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/config"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/storage"
)

func usage() {
	fmt.Println("Uso: admin <comando> [args]")
	fmt.Println("  fila                    profundidade da fila de mediação")
	fmt.Println("  protocolo <número>      detalhes de uma denúncia")
	fmt.Println("  emails <número>         e-mails enviados para um protocolo")
	os.Exit(1)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuração inválida: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("falha ao conectar o banco: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("falha ao conectar o Redis: %v", err)
	}
	store := storage.NewService(db, rdb)

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "fila":
		depth, err := store.MediatorQueueDepth()
		if err != nil {
			log.Fatalf("falha ao consultar a fila: %v", err)
		}
		fmt.Printf("Fila de mediação: %d cidadão(s) aguardando\n", depth)

	case "protocolo":
		if len(os.Args) != 3 {
			usage()
		}
		c, err := store.FindComplaintByProtocol(os.Args[2])
		if err != nil {
			log.Fatalf("protocolo %s não encontrado: %v", os.Args[2], err)
		}
		fmt.Printf("Protocolo:  %s\n", c.ProtocolNumber)
		fmt.Printf("Categoria:  %s\n", c.Category)
		fmt.Printf("Artigo CDC: %s\n", c.CDCArticle)
		fmt.Printf("Risco:      %s\n", c.RiskLevel)
		fmt.Printf("Descrição:  %s\n", c.Description)
		if c.Transcript != "" {
			fmt.Printf("\nTranscrição do chat:\n%s\n", c.Transcript)
		}

	case "emails":
		if len(os.Args) != 3 {
			usage()
		}
		emails, err := store.ListSentEmailsByProtocol(os.Args[2])
		if err != nil {
			log.Fatalf("falha ao listar e-mails: %v", err)
		}
		if len(emails) == 0 {
			fmt.Println("Nenhum e-mail registrado para esse protocolo.")
			return
		}
		for _, e := range emails {
			fmt.Printf("%s  %s  %s\n", e.SentAt.Format("02/01/2006 15:04"), e.To, e.Subject)
		}

	default:
		usage()
	}
}
