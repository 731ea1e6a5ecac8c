package mongodb

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"NewsDesk/internal/domain"
)

type sourceDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	domain.Source `bson:",inline"`
}

func (d sourceDoc) toDomain() domain.Source {
	src := d.Source
	src.ID = d.ID.Hex()
	return src
}

type articleDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	domain.Article `bson:",inline"`
}

func (d articleDoc) toDomain() domain.Article {
	a := d.Article
	a.ID = d.ID.Hex()
	return a
}

type fetchLogDoc struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	domain.FetchRunLog `bson:",inline"`
}

func (d fetchLogDoc) toDomain() domain.FetchRunLog {
	l := d.FetchRunLog
	l.ID = d.ID.Hex()
	return l
}

type catLogDoc struct {
	ID                          primitive.ObjectID `bson:"_id,omitempty"`
	domain.CategorizationRunLog `bson:",inline"`
}

func (d catLogDoc) toDomain() domain.CategorizationRunLog {
	l := d.CategorizationRunLog
	l.ID = d.ID.Hex()
	return l
}

type correctionDoc struct {
	ID                        primitive.ObjectID `bson:"_id,omitempty"`
	domain.CategoryCorrection `bson:",inline"`
}

func (d correctionDoc) toDomain() domain.CategoryCorrection {
	c := d.CategoryCorrection
	c.ID = d.ID.Hex()
	return c
}
