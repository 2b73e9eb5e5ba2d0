package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/parquet-go/parquet-go"
	_ "modernc.org/sqlite"
)

type Transaction struct {
	ID       int64   `parquet:"id"`
	Region   string  `parquet:"region"`
	Category string  `parquet:"category"`
	Amount   float64 `parquet:"amount"`
	Quantity int64   `parquet:"quantity"`
}

func main() {
	transactions := []Transaction{
		{ID: 1, Region: "north", Category: "hardware", Amount: 120.50, Quantity: 2},
		{ID: 2, Region: "south", Category: "software", Amount: 80.00, Quantity: 1},
		{ID: 3, Region: "north", Category: "software", Amount: 200.00, Quantity: 3},
		{ID: 4, Region: "east", Category: "hardware", Amount: 95.25, Quantity: 1},
		{ID: 5, Region: "south", Category: "services", Amount: 310.00, Quantity: 4},
	}

	writeParquet("transactions.parquet", transactions)
	writeSQLite("warehouse.db", transactions)
}

func writeParquet(path string, transactions []Transaction) {
	file, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[Transaction](file)
	if _, err := writer.Write(transactions); err != nil {
		log.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		log.Fatal(err)
	}

	log.Printf("Generated %s with %d transactions", path, len(transactions))
}

func writeSQLite(path string, transactions []Transaction) {
	os.Remove(path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	const schema = `CREATE TABLE transactions (
		id INTEGER PRIMARY KEY,
		region TEXT,
		category TEXT,
		amount REAL,
		quantity INTEGER
	)`
	if _, err := db.Exec(schema); err != nil {
		log.Fatal(err)
	}

	for _, tx := range transactions {
		_, err := db.Exec(
			"INSERT INTO transactions (id, region, category, amount, quantity) VALUES (?, ?, ?, ?, ?)",
			tx.ID, tx.Region, tx.Category, tx.Amount, tx.Quantity,
		)
		if err != nil {
			log.Fatal(err)
		}
	}

	log.Printf("Generated %s with %d transactions", path, len(transactions))
}
