// chatcli is a minimal terminal front end over pkg/chatclient. It signs in
// with a bearer token (the development mock-token by default), lists chats,
// and streams assistant replies to stdout as they arrive.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"chatstream-backend/pkg/chatclient"
)

func main() {
	serverURL := flag.String("server", "http://localhost:3001", "chatstream server base URL")
	token := flag.String("token", "mock-token", "bearer token (mock-token for development)")
	flag.Parse()

	client := chatclient.New(*serverURL, *token,
		chatclient.WithFragmentHandler(func(fragment string) {
			fmt.Print(fragment)
		}),
	)

	ctx := context.Background()
	if err := client.LoadChats(ctx); err != nil {
		log.Fatalf("FATAL: Failed to load chats: %v", err)
	}
	if active := client.ActiveChat(); active != "" {
		client.SelectChat(ctx, active)
	}

	printHelp()
	printChats(client)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "/quit":
			return
		case line == "/chats":
			printChats(client)
		case line == "/new":
			chat := client.NewChat(ctx, "")
			fmt.Printf("created %s (%s)\n", chat.ID, chat.Title)
		case strings.HasPrefix(line, "/open "):
			client.SelectChat(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/open ")))
			for _, msg := range client.Messages() {
				fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
			}
		case strings.HasPrefix(line, "/delete "):
			chatID := strings.TrimSpace(strings.TrimPrefix(line, "/delete "))
			if err := client.DeleteChat(ctx, chatID); err != nil {
				fmt.Printf("delete failed: %v\n", err)
			}
		case line == "/help":
			printHelp()
		default:
			if client.ActiveChat() == "" {
				client.NewChat(ctx, "")
			}
			fmt.Print("[assistant] ")
			client.SendMessage(ctx, line)
			fmt.Println()
		}
		fmt.Print("> ")
	}
}

func printHelp() {
	fmt.Println("commands: /chats /new /open <id> /delete <id> /help /quit (anything else is sent as a message)")
}

func printChats(client *chatclient.Client) {
	chats := client.Chats()
	if len(chats) == 0 {
		fmt.Println("no chats yet, type a message to start one")
		return
	}
	for _, chat := range chats {
		marker := " "
		if chat.ID == client.ActiveChat() {
			marker = "*"
		}
		fmt.Printf("%s %s  %s (updated %s)\n", marker, chat.ID, chat.Title, chat.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}
