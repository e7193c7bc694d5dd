package database_test

import (
	"errors"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/panotour/core/internal/database"
	"github.com/panotour/core/internal/database/dbtest"
	"github.com/panotour/core/internal/models"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"mysql 1062", &mysqldriver.MySQLError{Number: 1062}, true},
		{"mysql other", &mysqldriver.MySQLError{Number: 1045}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		if got := database.IsDuplicateKey(tt.err); got != tt.want {
			t.Errorf("%s: IsDuplicateKey() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestUniqueVotePair(t *testing.T) {
	db := dbtest.Open(t)
	if err := db.Create(&models.VoteModel{ProjectID: 1, UserID: 2, Rating: 3}).Error; err != nil {
		t.Fatalf("first vote: %v", err)
	}
	err := db.Create(&models.VoteModel{ProjectID: 1, UserID: 2, Rating: 5}).Error
	if !database.IsDuplicateKey(err) {
		t.Fatalf("second vote error = %v, want duplicate key", err)
	}
}
