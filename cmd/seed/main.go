package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/rhinoeg/rhino-backend/config"
	"github.com/rhinoeg/rhino-backend/internal/db"
)

func main() {
	assumeYes := flag.Bool("y", false, "import without asking for confirmation")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: seed [-y] [products.xlsx]")
		fmt.Fprintln(os.Stderr, "Without a file the demo catalog and promo codes are seeded.")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	if flag.NArg() == 0 {
		if err := db.Seed(); err != nil {
			log.Fatal("Failed to seed database:", err)
		}
		fmt.Println("Demo catalog seeded.")
		return
	}

	filePath := flag.Arg(0)
	fmt.Printf("Reading XLSX file: %s\n", filePath)

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	rows, summary, err := db.ReadProductRows(f)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Products to import: %d (skipped %d of %d rows)\n", len(rows), summary.Skipped, summary.Rows)

	if !*assumeYes && !confirm("Do you want to proceed with the import? (yes/no): ") {
		fmt.Println("Import cancelled.")
		return
	}

	if err := db.ImportProducts(db.GetDB(), rows, summary); err != nil {
		log.Fatal("Failed to import products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Created: %d, already present: %d\n", summary.Created, summary.Existing)
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}
