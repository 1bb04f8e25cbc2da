package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/ladle/internal/apperr"
	"github.com/starford/ladle/internal/models"
)

// Count returns the number of stored recipes.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM recipes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// InsertAll persists a batch of recipes in a single transaction and returns
// them with their freshly assigned ids. Any id set on the input is ignored;
// instruction order is preserved via step_order.
func (db *DB) InsertAll(recipes []models.Recipe) ([]models.Recipe, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	recipeStmt, err := tx.Prepare(`
		INSERT INTO recipes (name, cuisine, cook_time_minutes, image_url)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("store: prepare recipe insert: %w", err)
	}
	defer recipeStmt.Close()

	ingredientStmt, err := tx.Prepare(`INSERT INTO recipe_ingredients (recipe_id, ingredient) VALUES (?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("store: prepare ingredient insert: %w", err)
	}
	defer ingredientStmt.Close()

	instructionStmt, err := tx.Prepare(`INSERT INTO recipe_instructions (recipe_id, step_order, instruction) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("store: prepare instruction insert: %w", err)
	}
	defer instructionStmt.Close()

	tagStmt, err := tx.Prepare(`INSERT INTO recipe_tags (recipe_id, tag) VALUES (?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("store: prepare tag insert: %w", err)
	}
	defer tagStmt.Close()

	out := make([]models.Recipe, 0, len(recipes))
	for _, r := range recipes {
		var cookTime sql.NullInt64
		if r.CookTimeMinutes != nil {
			cookTime = sql.NullInt64{Int64: int64(*r.CookTimeMinutes), Valid: true}
		}
		res, err := recipeStmt.Exec(r.Name, r.Cuisine, cookTime, r.Image)
		if err != nil {
			return nil, fmt.Errorf("store: insert recipe %q: %w", r.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("store: last insert id: %w", err)
		}
		for _, ing := range r.Ingredients {
			if _, err := ingredientStmt.Exec(id, ing); err != nil {
				return nil, fmt.Errorf("store: insert ingredient: %w", err)
			}
		}
		for i, step := range r.Instructions {
			if _, err := instructionStmt.Exec(id, i, step); err != nil {
				return nil, fmt.Errorf("store: insert instruction: %w", err)
			}
		}
		for _, tag := range r.Tags {
			if _, err := tagStmt.Exec(id, tag); err != nil {
				return nil, fmt.Errorf("store: insert tag: %w", err)
			}
		}
		r.ID = id
		out = append(out, r)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return materialize(out), nil
}

// FindByID returns the recipe with the given id, or apperr.ErrNotFound.
func (db *DB) FindByID(id int64) (*models.Recipe, error) {
	recipes, err := db.queryRecipes(`WHERE r.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, apperr.ErrNotFound
	}
	return &recipes[0], nil
}

// FindByIDs returns the recipes with the given ids, ordered by id ascending.
// Missing ids are silently skipped.
func (db *DB) FindByIDs(ids []int64) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return []models.Recipe{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return db.queryRecipes(`WHERE r.id IN (`+placeholders+`)`, args...)
}

// FindAll returns every stored recipe, ordered by id ascending.
func (db *DB) FindAll() ([]models.Recipe, error) {
	return db.queryRecipes(``)
}

// queryRecipes runs the base recipe query with an optional WHERE clause and
// loads all three sub-collections for each returned row.
func (db *DB) queryRecipes(where string, args ...any) ([]models.Recipe, error) {
	rows, err := db.conn.Query(`
		SELECT r.id, r.name, r.cuisine, r.cook_time_minutes, r.image_url
		FROM recipes r `+where+`
		ORDER BY r.id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []models.Recipe
	byID := make(map[int64]int)
	for rows.Next() {
		var r models.Recipe
		var cookTime sql.NullInt64
		if err := rows.Scan(&r.ID, &r.Name, &r.Cuisine, &cookTime, &r.Image); err != nil {
			return nil, fmt.Errorf("store: scan recipe: %w", err)
		}
		if cookTime.Valid {
			v := int(cookTime.Int64)
			r.CookTimeMinutes = &v
		}
		byID[r.ID] = len(recipes)
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate recipes: %w", err)
	}
	if len(recipes) == 0 {
		return []models.Recipe{}, nil
	}

	if err := db.loadCollection(byID, `SELECT recipe_id, ingredient FROM recipe_ingredients ORDER BY rowid`, func(r *models.Recipe, v string) {
		r.Ingredients = append(r.Ingredients, v)
	}, recipes); err != nil {
		return nil, err
	}
	if err := db.loadCollection(byID, `SELECT recipe_id, instruction FROM recipe_instructions ORDER BY recipe_id, step_order`, func(r *models.Recipe, v string) {
		r.Instructions = append(r.Instructions, v)
	}, recipes); err != nil {
		return nil, err
	}
	if err := db.loadCollection(byID, `SELECT recipe_id, tag FROM recipe_tags ORDER BY rowid`, func(r *models.Recipe, v string) {
		r.Tags = append(r.Tags, v)
	}, recipes); err != nil {
		return nil, err
	}

	return materialize(recipes), nil
}

func (db *DB) loadCollection(byID map[int64]int, query string, add func(*models.Recipe, string), recipes []models.Recipe) error {
	rows, err := db.conn.Query(query)
	if err != nil {
		return fmt.Errorf("store: query collection: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var v string
		if err := rows.Scan(&id, &v); err != nil {
			return fmt.Errorf("store: scan collection: %w", err)
		}
		if i, ok := byID[id]; ok {
			add(&recipes[i], v)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("store: iterate collection: %w", err)
	}
	return nil
}

// materialize replaces nil sub-collections with empty slices so callers never
// observe a partially loaded aggregate.
func materialize(recipes []models.Recipe) []models.Recipe {
	for i := range recipes {
		if recipes[i].Ingredients == nil {
			recipes[i].Ingredients = []string{}
		}
		if recipes[i].Instructions == nil {
			recipes[i].Instructions = []string{}
		}
		if recipes[i].Tags == nil {
			recipes[i].Tags = []string{}
		}
	}
	return recipes
}
