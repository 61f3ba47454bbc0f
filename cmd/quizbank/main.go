package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quizbank"
)

func main() {
	var (
		docPath      = flag.String("doc", "", "Source document, .docx or plain text (required)")
		configPath   = flag.String("config", "", "Parser config file, YAML or JSON")
		sectionName  = flag.String("section", "", "Only output or play this section")
		listSections = flag.Bool("list-sections", false, "List the selectable sections and exit")
		outputFile   = flag.String("output", "", "Output file for bank JSON (default: stdout)")
		playMode     = flag.Bool("play", false, "Play a section interactively")
		dbPath       = flag.String("save", "", "Store the bank in this SQLite database")
		review       = flag.Bool("review", false, "Ask the model to suggest answers where none are highlighted")
		apiKey       = flag.String("api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
		logDir       = flag.String("log-dir", "logs", "Directory for review logs")
		verbose      = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	quizbank.SetVerbose(*verbose)

	if *docPath == "" {
		log.Fatal("Document is required. Use -doc flag.")
	}

	cfg := quizbank.DefaultParserConfig()
	if *configPath != "" {
		var err error
		cfg, err = quizbank.LoadParserConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load parser config: %v", err)
		}
	}

	paragraphs, err := quizbank.LoadDocument(*docPath)
	if err != nil {
		log.Fatalf("Failed to load document: %v", err)
	}

	parser := quizbank.NewParser(cfg, nil)
	dropped := 0
	parser.OnDrop(func(quizbank.DroppedQuestion) { dropped++ })
	bank := parser.Parse(paragraphs)

	if *verbose {
		log.Printf("Parsed %d paragraphs into %d sections, %d questions (%d dropped)",
			len(paragraphs), bank.Len(), bank.QuestionCount(), dropped)
	}

	if *listSections {
		printSections(bank)
		return
	}

	if *dbPath != "" {
		saveBank(*dbPath, *docPath, bank)
	}

	if *review {
		reviewBank(bank, *apiKey, *logDir)
	}

	if *playMode {
		section := pickSection(bank, *sectionName)
		result := playSection(os.Stdin, os.Stdout, section)
		printSummary(os.Stdout, result)
		return
	}

	var payload interface{} = bank
	if *sectionName != "" {
		section, ok := bank.Section(*sectionName)
		if !ok {
			log.Fatalf("Section %q not found. Use -list-sections to see the available sections.", *sectionName)
		}
		payload = section
	}

	output, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal bank: %v", err)
	}

	if *outputFile != "" {
		err = os.WriteFile(*outputFile, output, 0644)
		if err != nil {
			log.Fatalf("Failed to write output file: %v", err)
		}
		log.Printf("Bank saved to: %s", *outputFile)
	} else {
		fmt.Println(string(output))
	}
}

func printSections(bank *quizbank.QuizBank) {
	selectable := bank.SelectableSections()
	if len(selectable) == 0 {
		fmt.Println("No selectable sections found.")
		return
	}
	for i, name := range selectable {
		section, _ := bank.Section(name)
		fmt.Printf("%2d. %s (%d questions)\n", i+1, name, len(section.Questions))
	}
}

// pickSection resolves -section, falling back to the first selectable section
func pickSection(bank *quizbank.QuizBank, name string) quizbank.Section {
	if name == "" {
		selectable := bank.SelectableSections()
		if len(selectable) == 0 {
			log.Fatal("No selectable sections found. Use -section to pick one explicitly.")
		}
		name = selectable[0]
	}
	section, ok := bank.Section(name)
	if !ok {
		log.Fatalf("Section %q not found. Use -list-sections to see the available sections.", name)
	}
	if len(section.Questions) == 0 {
		log.Fatalf("Section %q has no questions.", name)
	}
	return section
}

func saveBank(dbPath, docPath string, bank *quizbank.QuizBank) {
	db, err := quizbank.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	source := filepath.Base(docPath)
	name := strings.TrimSuffix(source, filepath.Ext(source))
	id, err := db.SaveBank(name, source, bank)
	if err != nil {
		log.Fatalf("Failed to save bank: %v", err)
	}
	log.Printf("Bank stored with ID: %s", id)
}

func reviewBank(bank *quizbank.QuizBank, apiKey, logDir string) {
	// Get API key from flag or environment
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			log.Fatal("OpenAI API key is required for -review. Use -api-key flag or set OPENAI_API_KEY environment variable.")
		}
	}

	runID := time.Now().Format("20060102-150405")
	logger, err := quizbank.NewReviewLogger(logDir, runID, bank)
	if err != nil {
		log.Fatalf("Failed to create review log: %v", err)
	}
	defer logger.Close()

	reviewer := quizbank.NewBankReviewer(apiKey)
	reviewer.SetLogger(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	suggestions, err := reviewer.Review(ctx, bank)
	if err != nil {
		log.Printf("Review stopped early: %v", err)
	}
	printSuggestions(os.Stderr, suggestions)
}
