package db

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"gorm.io/gorm"
)

type wordRecord struct {
	Deck         string
	LanguageCode string
	Word         string
}

func errDeckTooSmall(deck, languageCode string, have, want int) error {
	return fmt.Errorf("deck %s/%s has %d words, need %d", deck, languageCode, have, want)
}

// LoadDeck reads words from a CSV and upserts them into the deck_words
// table. Rows are either a single word column or deck,language,word;
// single-column rows fall into the given defaults.
func LoadDeck(conn *gorm.DB, path, defaultDeck, defaultLanguage string) (int, error) {
	if conn == nil {
		return 0, nil
	}
	records, err := readWords(path, defaultDeck, defaultLanguage)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, record := range records {
		entry := DeckWord{
			Deck:         record.Deck,
			LanguageCode: record.LanguageCode,
			Word:         record.Word,
		}
		if err := conn.FirstOrCreate(&entry, DeckWord{
			Deck:         entry.Deck,
			LanguageCode: entry.LanguageCode,
			Word:         entry.Word,
		}).Error; err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

func readWords(path, defaultDeck, defaultLanguage string) ([]wordRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var records []wordRecord
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) == 0 {
			continue
		}
		record := wordRecord{Deck: defaultDeck, LanguageCode: defaultLanguage}
		if len(row) >= 3 {
			record.Deck = strings.ToUpper(strings.TrimSpace(row[0]))
			record.LanguageCode = strings.ToLower(strings.TrimSpace(row[1]))
			record.Word = strings.TrimSpace(row[2])
		} else {
			record.Word = strings.TrimSpace(row[0])
		}
		if record.Word == "" {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
