package repository

import (
	"context"
	"fmt"
	"reflect"

	"study_tracker_backend/internal/model"
	"study_tracker_backend/internal/util"
	"study_tracker_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Collection string

const (
	CollectionCourses  Collection = "courses"
	CollectionProgress Collection = "learning_progress"
	CollectionNotes    Collection = "notes"
	CollectionSessions Collection = "study_sessions"
)

const ownerColumn = "user_id"

// Filter 等值过滤
type Filter struct {
	Column string
	Value  interface{}
}

func Eq(column string, value interface{}) Filter {
	return Filter{Column: column, Value: value}
}

// Order 单列排序
type Order struct {
	Column     string
	Descending bool
}

type Query struct {
	// 为空时返回全部列
	Columns []string
	Filters []Filter
	Order   *Order
	// 需要一并加载的关联集合
	Joins []Collection
}

// RecordStore 按集合提供的增删改查，所有调用都限定在 user 名下的数据
type RecordStore interface {
	Select(ctx context.Context, user model.UserContext, c Collection, dest interface{}, q Query) error
	Insert(ctx context.Context, user model.UserContext, c Collection, rows ...model.Owned) error
	Update(ctx context.Context, user model.UserContext, c Collection, patch map[string]interface{}, filters ...Filter) (int64, error)
	Delete(ctx context.Context, user model.UserContext, c Collection, filters ...Filter) (int64, error)
}

type collectionSchema struct {
	model   interface{}
	columns map[string]bool
	// 关联集合 -> gorm 关联字段名
	joins map[Collection]string
}

func columnSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

var schemas = map[Collection]collectionSchema{
	CollectionCourses: {
		model:   &model.Course{},
		columns: columnSet("id", "user_id", "title", "description", "category", "target_hours", "created_at", "updated_at"),
		joins:   map[Collection]string{CollectionProgress: "Progress"},
	},
	CollectionProgress: {
		model: &model.LearningProgress{},
		columns: columnSet("id", "course_id", "user_id", "progress_percentage", "hours_spent", "status",
			"last_studied_at", "created_at", "updated_at"),
		joins: map[Collection]string{CollectionCourses: "Course"},
	},
	CollectionNotes: {
		model:   &model.Note{},
		columns: columnSet("id", "course_id", "user_id", "title", "content", "created_at", "updated_at"),
	},
	CollectionSessions: {
		model: &model.StudySession{},
		columns: columnSet("id", "course_id", "user_id", "duration_minutes", "session_date", "notes",
			"created_at", "updated_at"),
	},
}

// 删除课程时一并删除的下级集合
var courseDependents = []Collection{CollectionProgress, CollectionNotes, CollectionSessions}

func lookup(c Collection) (collectionSchema, error) {
	s, ok := schemas[c]
	if !ok {
		return collectionSchema{}, fmt.Errorf("%w: %s", util.ErrUnknownCollection, c)
	}
	return s, nil
}

func (s collectionSchema) checkColumns(c Collection, names ...string) error {
	for _, n := range names {
		if !s.columns[n] {
			return fmt.Errorf("%w: %s.%s", util.ErrUnknownColumn, c, n)
		}
	}
	return nil
}

func (s collectionSchema) checkFilters(c Collection, filters []Filter) error {
	for _, f := range filters {
		if err := s.checkColumns(c, f.Column); err != nil {
			return err
		}
	}
	return nil
}

func (s collectionSchema) newModel() interface{} {
	return reflect.New(reflect.TypeOf(s.model).Elem()).Interface()
}

type GormRecordStore struct {
	DB *gorm.DB
}

func NewGormRecordStore(db *gorm.DB) *GormRecordStore {
	return &GormRecordStore{DB: db}
}

func scoped(db *gorm.DB, user model.UserContext, filters []Filter) *gorm.DB {
	for _, f := range filters {
		db = db.Where(clause.Eq{Column: clause.Column{Name: f.Column}, Value: f.Value})
	}
	return db.Where(clause.Eq{Column: clause.Column{Name: ownerColumn}, Value: user.UserID})
}

func startSpan(ctx context.Context, op string, c Collection) (context.Context, trace.Span) {
	return tracing.Tracer.Start(ctx, "store."+op, trace.WithAttributes(
		attribute.String("store.collection", string(c)),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *GormRecordStore) Select(ctx context.Context, user model.UserContext, c Collection, dest interface{}, q Query) (err error) {
	ctx, span := startSpan(ctx, "select", c)
	defer func() { endSpan(span, err) }()

	s, err := lookup(c)
	if err != nil {
		return err
	}
	if err = s.checkColumns(c, q.Columns...); err != nil {
		return err
	}
	if err = s.checkFilters(c, q.Filters); err != nil {
		return err
	}

	db := scoped(r.DB.WithContext(ctx).Model(s.newModel()), user, q.Filters)
	if len(q.Columns) > 0 {
		db = db.Select(q.Columns)
	}

	for _, j := range q.Joins {
		assoc, ok := s.joins[j]
		if !ok {
			return fmt.Errorf("%w: %s cannot join %s", util.ErrUnknownCollection, c, j)
		}
		db = db.Preload(assoc, ownerColumn+" = ?", user.UserID)
	}

	if q.Order != nil {
		if err = s.checkColumns(c, q.Order.Column); err != nil {
			return err
		}
		// 同值时按创建时间、主键排序，保证重复查询顺序一致
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: q.Order.Column}, Desc: q.Order.Descending})
		if q.Order.Column != "created_at" {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: q.Order.Descending})
		}
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.Order.Descending})
	}

	if err = db.Find(dest).Error; err != nil {
		return fmt.Errorf("select %s: %w", c, err)
	}
	return nil
}

// parentCourse 笔记和学习记录所属的课程
func parentCourse(row model.Owned) (string, bool) {
	switch v := row.(type) {
	case *model.Note:
		return v.CourseID, true
	case *model.StudySession:
		return v.CourseID, true
	}
	return "", false
}

// requireOwnedCourse 只能挂在自己的课程下
func requireOwnedCourse(tx *gorm.DB, user model.UserContext, courseID string) error {
	var n int64
	err := tx.Model(&model.Course{}).
		Where("id = ?", courseID).
		Where(ownerColumn+" = ?", user.UserID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", util.ErrCourseNotFound, courseID)
	}
	return nil
}

func (r *GormRecordStore) Insert(ctx context.Context, user model.UserContext, c Collection, rows ...model.Owned) (err error) {
	ctx, span := startSpan(ctx, "insert", c)
	defer func() { endSpan(span, err) }()

	s, err := lookup(c)
	if err != nil {
		return err
	}
	want := reflect.TypeOf(s.model)
	for _, row := range rows {
		if reflect.TypeOf(row) != want {
			return fmt.Errorf("insert %s: row of type %T", c, row)
		}
	}

	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if courseID, ok := parentCourse(row); ok {
				if err := requireOwnedCourse(tx, user, courseID); err != nil {
					return err
				}
			}
			row.SetOwner(user.UserID)
			if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
				return err
			}
			// 新课程自动创建一条初始进度
			if course, ok := row.(*model.Course); ok {
				progress := model.NewDefaultProgress(course.ID, user.UserID)
				progress.CreatedAt = course.CreatedAt
				if err := tx.Create(progress).Error; err != nil {
					return err
				}
				course.Progress = progress
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert %s: %w", c, err)
	}
	return nil
}

func (r *GormRecordStore) Update(ctx context.Context, user model.UserContext, c Collection, patch map[string]interface{}, filters ...Filter) (affected int64, err error) {
	ctx, span := startSpan(ctx, "update", c)
	defer func() {
		span.SetAttributes(attribute.Int64("store.rows_affected", affected))
		endSpan(span, err)
	}()

	s, err := lookup(c)
	if err != nil {
		return 0, err
	}
	for col := range patch {
		if col == "id" || col == ownerColumn {
			return 0, fmt.Errorf("%w: %s.%s is read-only", util.ErrUnknownColumn, c, col)
		}
		if err = s.checkColumns(c, col); err != nil {
			return 0, err
		}
	}
	if err = s.checkFilters(c, filters); err != nil {
		return 0, err
	}

	result := scoped(r.DB.WithContext(ctx).Model(s.newModel()), user, filters).Updates(patch)
	if result.Error != nil {
		return 0, fmt.Errorf("update %s: %w", c, result.Error)
	}
	return result.RowsAffected, nil
}

func (r *GormRecordStore) Delete(ctx context.Context, user model.UserContext, c Collection, filters ...Filter) (affected int64, err error) {
	ctx, span := startSpan(ctx, "delete", c)
	defer func() {
		span.SetAttributes(attribute.Int64("store.rows_affected", affected))
		endSpan(span, err)
	}()

	s, err := lookup(c)
	if err != nil {
		return 0, err
	}
	if err = s.checkFilters(c, filters); err != nil {
		return 0, err
	}

	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if c == CollectionCourses {
			var ids []string
			if err := scoped(tx.Model(&model.Course{}), user, filters).Pluck("id", &ids).Error; err != nil {
				return err
			}
			if len(ids) == 0 {
				return nil
			}
			for _, dep := range courseDependents {
				ds := schemas[dep]
				err := tx.Where("course_id IN ?", ids).
					Where(ownerColumn+" = ?", user.UserID).
					Delete(ds.newModel()).Error
				if err != nil {
					return err
				}
			}
			result := tx.Where("id IN ?", ids).Where(ownerColumn+" = ?", user.UserID).Delete(&model.Course{})
			if result.Error != nil {
				return result.Error
			}
			affected = result.RowsAffected
			return nil
		}

		result := scoped(tx, user, filters).Delete(s.newModel())
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", c, err)
	}
	return affected, nil
}
