package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"hotel_id",
			"type",
			"capacity",
			"is_available",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"hotel_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"type": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"capacity": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"is_available": bson.M{
				"bsonType": "bool",
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
