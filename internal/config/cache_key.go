package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ClassPublishedTimetableKey returns the cache key for a class's published timetable
func (r *CacheKeyStruct) ClassPublishedTimetableKey(classID int) string {
	return fmt.Sprintf("timetable:class:%d:published", classID)
}

// ClassTimetableGenerationKey returns the counter bumped on every invalidation of a class's timetable
func (r *CacheKeyStruct) ClassTimetableGenerationKey(classID int) string {
	return fmt.Sprintf("timetable:class:%d:generation", classID)
}

// ClassTimetableChannel returns the Redis PubSub channel carrying timetable changes of a class
func (r *CacheKeyStruct) ClassTimetableChannel(classID int) string {
	return fmt.Sprintf("timetable:class:%d:changes", classID)
}

// GradingChannel returns the Redis PubSub channel carrying grading system changes
func (r *CacheKeyStruct) GradingChannel() string {
	return "grading:changes"
}

// RevokedTokenKey returns the key marking a signed-out token id as revoked
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("auth:revoked:%s", jti)
}

var CacheKey = NewCacheKeyStruct()
