// Command extract builds the local proverb cache. It ingests either a JSON
// list or an HTML page with phrase/meaning pairs and writes them into the
// sqlite database the bagdhara bot reads first.
package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	_ "modernc.org/sqlite"

	"bskybots/internal/model"
)

// Flags
var (
	jsonIn = flag.String("json", "", "input JSON file: [{\"phrase\":..., \"meaning\":...}, ...]")
	htmlIn = flag.String("html", "", "input HTML file with phrase/meaning pairs in table rows or dt/dd lists")
	dbOut  = flag.String("db", "files/bangla_bagdhara.sqlite", "output sqlite cache")
)

func main() {
	log.SetFlags(0)
	flag.Parse()

	var proverbs []model.Proverb
	switch {
	case *jsonIn != "":
		proverbs = loadJSON(*jsonIn)
	case *htmlIn != "":
		proverbs = scrapeHTML(*htmlIn)
	default:
		log.Fatal("one of -json or -html is required")
	}
	if len(proverbs) == 0 {
		log.Fatal("no proverbs found in input")
	}

	must(writeCache(*dbOut, proverbs))
	log.Printf("wrote %d proverbs to %s", len(proverbs), *dbOut)
}

func loadJSON(path string) []model.Proverb {
	data, err := os.ReadFile(path)
	must(err)
	var proverbs []model.Proverb
	if err := json.Unmarshal(data, &proverbs); err != nil {
		log.Fatalf("parse %s: %v", path, err)
	}
	return proverbs
}

// scrapeHTML pulls phrase/meaning pairs out of an HTML page. Two shapes are
// recognized: table rows with two cells, and definition lists where each dt
// is followed by a dd.
func scrapeHTML(path string) []model.Proverb {
	f, err := os.Open(path)
	must(err)
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		log.Fatalf("parse %s: %v", path, err)
	}

	var proverbs []model.Proverb
	seen := map[string]bool{}
	add := func(phrase, meaning string) {
		phrase = strings.TrimSpace(phrase)
		meaning = strings.TrimSpace(meaning)
		if phrase == "" || meaning == "" || seen[phrase] {
			return
		}
		seen[phrase] = true
		proverbs = append(proverbs, model.Proverb{Phrase: phrase, Meaning: meaning})
	}

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != 2 {
			return
		}
		add(cells.Eq(0).Text(), cells.Eq(1).Text())
	})
	doc.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		dd := dt.NextFiltered("dd")
		if dd.Length() == 0 {
			return
		}
		add(dt.Text(), dd.Text())
	})
	return proverbs
}

func writeCache(path string, proverbs []model.Proverb) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS proverbs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	phrase TEXT NOT NULL UNIQUE,
	meaning TEXT NOT NULL
);
DELETE FROM proverbs;`); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO proverbs (phrase, meaning) VALUES (?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, p := range proverbs {
		if _, err := stmt.Exec(p.Phrase, p.Meaning); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
