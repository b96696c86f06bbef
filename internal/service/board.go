package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"projectly/internal/model"
)

const defaultBoardName = "Default Board"

// BoardService covers the Kanban hierarchy: boards, their lists and the
// cards inside them. Lists and cards are ordered by position then id.
type BoardService struct{ db *gorm.DB }

func NewBoardService(db *gorm.DB) *BoardService { return &BoardService{db: db} }

func byPosition(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }

func visibleBoardIDs(db *gorm.DB, uid uint) *gorm.DB {
	return db.Model(&model.Board{}).Select("id").Where("project_id IN (?)", memberProjectIDs(db, uid))
}

func visibleListIDs(db *gorm.DB, uid uint) *gorm.DB {
	return db.Model(&model.BoardList{}).Select("id").Where("board_id IN (?)", visibleBoardIDs(db, uid))
}

func checkPosition(v *ValidationError, pos *int) {
	if pos != nil && *pos < 0 {
		v.Add("position", "Ensure this value is greater than or equal to 0.")
	}
}

// --- boards ---

func (s *BoardService) ListBoards(ctx context.Context, c Caller, projectID uint) ([]model.Board, error) {
	db := s.db.WithContext(ctx)
	if err := requireMember(db, projectID, c.UserID); err != nil {
		return nil, err
	}
	var boards []model.Board
	if err := db.Where("project_id = ?", projectID).Order("id").Find(&boards).Error; err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return boards, nil
}

func (s *BoardService) CreateBoard(ctx context.Context, c Caller, projectID uint, req model.BoardRequest) (*model.Board, error) {
	name := defaultBoardName
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		name = strings.TrimSpace(*req.Name)
	}
	v := &ValidationError{}
	checkLen(v, "name", name, 255, true)
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	b := model.Board{ProjectID: projectID, Name: name}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireMember(tx, projectID, c.UserID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&b).Error
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// DefaultBoard returns the project's first board, creating one on demand.
func (s *BoardService) DefaultBoard(ctx context.Context, c Caller, projectID uint) (*model.Board, error) {
	var b model.Board
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireMember(tx, projectID, c.UserID); err != nil {
			return err
		}
		err := tx.Where("project_id = ?", projectID).Order("id").First(&b).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			b = model.Board{ProjectID: projectID, Name: defaultBoardName}
			return tx.Omit(clause.Associations).Create(&b).Error
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *BoardService) GetBoard(ctx context.Context, c Caller, id uint) (*model.Board, error) {
	return s.getBoard(s.db.WithContext(ctx), c, id)
}

func (s *BoardService) getBoard(db *gorm.DB, c Caller, id uint) (*model.Board, error) {
	var b model.Board
	err := db.Where("id = ? AND project_id IN (?)", id, memberProjectIDs(db, c.UserID)).First(&b).Error
	if err != nil {
		return nil, notFound(err, "board")
	}
	return &b, nil
}

func (s *BoardService) UpdateBoard(ctx context.Context, c Caller, id uint, req model.BoardRequest) (*model.Board, error) {
	var b *model.Board
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if b, err = s.getBoard(tx, c, id); err != nil {
			return err
		}
		if req.Name != nil {
			b.Name = strings.TrimSpace(*req.Name)
			v := &ValidationError{}
			checkLen(v, "name", b.Name, 255, true)
			if err := v.OrNil(); err != nil {
				return err
			}
		}
		return tx.Omit(clause.Associations).Save(b).Error
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BoardService) DeleteBoard(ctx context.Context, c Caller, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := s.getBoard(tx, c, id)
		if err != nil {
			return err
		}
		return tx.Delete(b).Error
	})
}

// --- lists ---

func (s *BoardService) ListLists(ctx context.Context, c Caller, boardID uint) ([]model.BoardList, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.getBoard(db, c, boardID); err != nil {
		return nil, err
	}
	var lists []model.BoardList
	if err := byPosition(db.Where("board_id = ?", boardID)).Find(&lists).Error; err != nil {
		return nil, fmt.Errorf("list board lists: %w", err)
	}
	return lists, nil
}

func (s *BoardService) CreateList(ctx context.Context, c Caller, boardID uint, req model.BoardListRequest) (*model.BoardList, error) {
	l := model.BoardList{BoardID: boardID, Name: strings.TrimSpace(deref(req.Name)), Position: deref(req.Position)}
	v := &ValidationError{}
	checkLen(v, "name", l.Name, 100, true)
	checkPosition(v, req.Position)
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.getBoard(tx, c, boardID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&l).Error
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *BoardService) GetList(ctx context.Context, c Caller, id uint) (*model.BoardList, error) {
	return s.getList(s.db.WithContext(ctx), c, id)
}

func (s *BoardService) getList(db *gorm.DB, c Caller, id uint) (*model.BoardList, error) {
	var l model.BoardList
	err := db.Where("id = ? AND board_id IN (?)", id, visibleBoardIDs(db, c.UserID)).First(&l).Error
	if err != nil {
		return nil, notFound(err, "board list")
	}
	return &l, nil
}

func (s *BoardService) UpdateList(ctx context.Context, c Caller, id uint, req model.BoardListRequest) (*model.BoardList, error) {
	var l *model.BoardList
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if l, err = s.getList(tx, c, id); err != nil {
			return err
		}
		v := &ValidationError{}
		if req.Name != nil {
			l.Name = strings.TrimSpace(*req.Name)
			checkLen(v, "name", l.Name, 100, true)
		}
		if req.Position != nil {
			checkPosition(v, req.Position)
			l.Position = *req.Position
		}
		if err := v.OrNil(); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(l).Error
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *BoardService) DeleteList(ctx context.Context, c Caller, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := s.getList(tx, c, id)
		if err != nil {
			return err
		}
		return tx.Delete(l).Error
	})
}

// --- cards ---

func (s *BoardService) ListCards(ctx context.Context, c Caller, listID uint) ([]model.Card, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.getList(db, c, listID); err != nil {
		return nil, err
	}
	var cards []model.Card
	if err := byPosition(db.Where("list_id = ?", listID)).Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

func newCard(listID, creator uint, req model.CardRequest) (*model.Card, error) {
	card := model.Card{
		ListID:      listID,
		Title:       strings.TrimSpace(deref(req.Title)),
		Description: deref(req.Description),
		Position:    deref(req.Position),
		CreatedByID: creator,
	}
	v := &ValidationError{}
	card.DueDate = parseDateTime(v, "due_date", req.DueDate.Value, false)
	checkLen(v, "title", card.Title, 255, true)
	checkPosition(v, req.Position)
	return &card, v.OrNil()
}

func (s *BoardService) CreateCard(ctx context.Context, c Caller, listID uint, req model.CardRequest) (*model.Card, error) {
	card, err := newCard(listID, c.UserID, req)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.getList(tx, c, listID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(card).Error
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (s *BoardService) GetCard(ctx context.Context, c Caller, id uint) (*model.Card, error) {
	return s.getCard(s.db.WithContext(ctx), c, id)
}

func (s *BoardService) getCard(db *gorm.DB, c Caller, id uint) (*model.Card, error) {
	var card model.Card
	err := db.Where("id = ? AND list_id IN (?)", id, visibleListIDs(db, c.UserID)).First(&card).Error
	if err != nil {
		return nil, notFound(err, "card")
	}
	return &card, nil
}

// UpdateCard applies the fields present in req; a list change moves the card
// and must target a list the caller can see.
func (s *BoardService) UpdateCard(ctx context.Context, c Caller, id uint, req model.CardRequest) (*model.Card, error) {
	var card *model.Card
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if card, err = s.getCard(tx, c, id); err != nil {
			return err
		}
		v := &ValidationError{}
		if req.Title != nil {
			card.Title = strings.TrimSpace(*req.Title)
			checkLen(v, "title", card.Title, 255, true)
		}
		if req.Description != nil {
			card.Description = *req.Description
		}
		if req.Position != nil {
			checkPosition(v, req.Position)
			card.Position = *req.Position
		}
		if req.DueDate.Set {
			card.DueDate = parseDateTime(v, "due_date", req.DueDate.Value, false)
		}
		if req.List != nil && *req.List != card.ListID {
			if _, err := s.getList(tx, c, *req.List); err != nil {
				if errors.Is(err, ErrNotFound) {
					v.Add("list", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", *req.List))
				} else {
					return err
				}
			}
			card.ListID = *req.List
		}
		if err := v.OrNil(); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(card).Error
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (s *BoardService) DeleteCard(ctx context.Context, c Caller, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := s.getCard(tx, c, id)
		if err != nil {
			return err
		}
		return tx.Delete(card).Error
	})
}

// --- public board access ---

// PublicLists returns every list of a board with its cards, without any
// membership check.
func (s *BoardService) PublicLists(ctx context.Context, boardID uint) ([]model.BoardList, error) {
	var lists []model.BoardList
	err := byPosition(s.db.WithContext(ctx).Preload("Cards", byPosition).Where("board_id = ?", boardID)).
		Find(&lists).Error
	if err != nil {
		return nil, fmt.Errorf("list public board: %w", err)
	}
	return lists, nil
}

// PublicCreateCard adds a card to any list; creator is whoever the handler
// resolved as the acting user.
func (s *BoardService) PublicCreateCard(ctx context.Context, listID, creator uint, req model.CardRequest) (*model.Card, error) {
	card, err := newCard(listID, creator, req)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.BoardList{}).Where("id = ?", listID).Count(&n).Error; err != nil {
			return fmt.Errorf("check list: %w", err)
		}
		if n == 0 {
			return invalid("list", "Invalid board list ID.")
		}
		return tx.Omit(clause.Associations).Create(card).Error
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}
