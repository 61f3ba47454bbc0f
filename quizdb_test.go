package quizbank

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "quizbank.db"))
	require.NoError(t, err)
	require.NoError(t, db.CreateTables())
	t.Cleanup(func() { db.CloseDB() })
	return db
}

func storedBank() *QuizBank {
	return Parse([]Paragraph{
		para("Which is larger?"),
		para("A. 1"),
		marked("B. ", "2"),
		para("Phụ lục 1"),
		para("1. Odd one out"),
		para("A. cat"),
		marked("B. ", "dog"),
		para("2. Colour?"),
		marked("A. ", "red"),
		para("B. table"),
		para("Phụ lục 2"),
		para("3. Orphan"),
	}, DefaultParserConfig(), nil)
}

func TestDBBankRoundTrip(t *testing.T) {
	db := openTestDB(t)
	bank := storedBank()

	id, err := db.SaveBank("Unit test bank", "bank.docx", bank)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	loaded, err := db.GetBank(id)
	require.NoError(t, err)
	require.Equal(t, bank.SectionNames(), loaded.SectionNames())
	require.Equal(t, bank.Sections(), loaded.Sections())
	require.Equal(t, bank.SelectableSections(), loaded.SelectableSections())

	info, err := db.GetBankInfo(id)
	require.NoError(t, err)
	require.Equal(t, "Unit test bank", info.Name)
	require.Equal(t, "bank.docx", info.Source)
	require.Equal(t, 3, info.NumSections)
	require.Equal(t, 3, info.NumQuestions)
}

func TestDBListAndDeleteBanks(t *testing.T) {
	db := openTestDB(t)

	first, err := db.SaveBank("first", "a.docx", storedBank())
	require.NoError(t, err)
	second, err := db.SaveBank("second", "b.docx", storedBank())
	require.NoError(t, err)

	banks, err := db.ListBanks()
	require.NoError(t, err)
	require.Len(t, banks, 2)
	ids := []string{banks[0].ID, banks[1].ID}
	require.ElementsMatch(t, []string{first, second}, ids)

	section, _ := storedBank().Section("Phụ lục 1")
	_, err = db.SaveAttempt(first, Grade(section, map[int]string{0: "B. dog"}))
	require.NoError(t, err)

	require.NoError(t, db.DeleteBank(first))
	_, err = db.GetBank(first)
	require.ErrorIs(t, err, ErrBankNotFound)
	require.ErrorIs(t, db.DeleteBank(first), ErrBankNotFound)

	attempts, err := db.ListAttempts(first)
	require.NoError(t, err)
	require.Empty(t, attempts)

	banks, err = db.ListBanks()
	require.NoError(t, err)
	require.Len(t, banks, 1)
	require.Equal(t, second, banks[0].ID)
}

func TestDBAttempts(t *testing.T) {
	db := openTestDB(t)
	bankID, err := db.SaveBank("bank", "bank.docx", storedBank())
	require.NoError(t, err)

	section, _ := storedBank().Section("Phụ lục 1")
	result := Grade(section, map[int]string{0: "B. dog", 1: "B. table"})

	attemptID, err := db.SaveAttempt(bankID, result)
	require.NoError(t, err)

	attempt, err := db.GetAttempt(attemptID)
	require.NoError(t, err)
	require.Equal(t, bankID, attempt.BankID)
	require.Equal(t, "Phụ lục 1", attempt.Section)
	require.Equal(t, 1, attempt.Score)
	require.Equal(t, 2, attempt.Total)
	require.Equal(t, result, attempt.Result)

	attempts, err := db.ListAttempts(bankID)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	require.Equal(t, attemptID, attempts[0].ID)

	_, err = db.GetAttempt("missing")
	require.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestDBSaveAttemptUnknownBank(t *testing.T) {
	db := openTestDB(t)
	_, err := db.SaveAttempt("missing", Result{Section: "x"})
	require.Error(t, err)
}

func TestOptionsJSON(t *testing.T) {
	options := []Option{{Text: "A. cat"}, {Text: "B. dog", Correct: true}}
	data, err := OptionsToJSON(options)
	require.NoError(t, err)

	decoded, err := JSONToOptions(data)
	require.NoError(t, err)
	require.Equal(t, options, decoded)

	_, err = JSONToOptions("{")
	require.Error(t, err)
}
