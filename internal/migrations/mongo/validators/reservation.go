package validators

import "go.mongodb.org/mongo-driver/bson"

// Calendar dates are persisted as plain "YYYY-MM-DD" strings so that
// lexical comparison matches chronological comparison.
const calendarDatePattern = `^\d{4}-\d{2}-\d{2}$`

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"hotel_id",
			"room_id",
			"check_in",
			"check_out",
			"guests",
			"status",
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

			"room_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"guest_name": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"guest_email": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},

			"check_in": bson.M{
				"bsonType": "string",
				"pattern":  calendarDatePattern,
			},

			"check_out": bson.M{
				"bsonType": "string",
				"pattern":  calendarDatePattern,
			},

			"guests": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"checked_in",
					"checked_out",
					"cancelled",
				},
			},

			"special_requests": bson.M{
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
