package postgres

import (
	"github.com/classmark/testing-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	user     repositories.UserRepository
	group    repositories.GroupRepository
	test     repositories.TestRepository
	question repositories.QuestionRepository
	result   repositories.ResultRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		user:     NewUserPostgreSQL(db),
		group:    NewGroupPostgreSQL(db),
		test:     NewTestPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		result:   NewResultPostgreSQL(db),
	}
}

func (r *Repository) User() repositories.UserRepository         { return r.user }
func (r *Repository) Group() repositories.GroupRepository       { return r.group }
func (r *Repository) Test() repositories.TestRepository         { return r.test }
func (r *Repository) Question() repositories.QuestionRepository { return r.question }
func (r *Repository) Result() repositories.ResultRepository     { return r.result }
