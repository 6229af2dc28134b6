package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE PROFILES (students, companies)
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create student and company directory tables
-- Version: 001

CREATE TABLE IF NOT EXISTS students (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL UNIQUE,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL DEFAULT '',
    skills TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_students_user_id ON students(user_id);
-- GIN index so the skill-match fan-out can use the array overlap operator.
CREATE INDEX IF NOT EXISTS idx_students_skills ON students USING GIN(skills);

CREATE TABLE IF NOT EXISTS companies (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL UNIQUE,
    name VARCHAR(200) NOT NULL,
    verification_status VARCHAR(20) NOT NULL DEFAULT 'Pending',
    verified_by UUID,
    verified_at TIMESTAMP WITH TIME ZONE,
    verification_notes TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_verification_status CHECK (verification_status IN ('Pending', 'Verified', 'Rejected'))
);

CREATE INDEX IF NOT EXISTS idx_companies_user_id ON companies(user_id);
CREATE INDEX IF NOT EXISTS idx_companies_verification_status ON companies(verification_status);
`


// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE INTERNSHIPS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create internships table
-- Version: 002

CREATE TABLE IF NOT EXISTS internships (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
    created_by UUID NOT NULL,
    title VARCHAR(200) NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    approval_status VARCHAR(20) NOT NULL DEFAULT 'Pending',
    application_deadline TIMESTAMP WITH TIME ZONE NOT NULL,
    questions JSONB NOT NULL DEFAULT '[]'::jsonb,
    skills_required TEXT[] NOT NULL DEFAULT '{}',
    applications_count INTEGER NOT NULL DEFAULT 0,
    reviewed_by UUID,
    reviewed_at TIMESTAMP WITH TIME ZONE,
    review_notes TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_approval_status CHECK (approval_status IN ('Pending', 'Approved', 'Rejected')),
    CONSTRAINT valid_applications_count CHECK (applications_count >= 0)
);

CREATE INDEX IF NOT EXISTS idx_internships_company_id ON internships(company_id);
CREATE INDEX IF NOT EXISTS idx_internships_approval_status ON internships(approval_status);
CREATE INDEX IF NOT EXISTS idx_internships_deadline ON internships(application_deadline);
CREATE INDEX IF NOT EXISTS idx_internships_skills ON internships USING GIN(skills_required);
`


// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE APPLICATIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create applications and their audit trail
-- Version: 003

CREATE TABLE IF NOT EXISTS applications (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    internship_id UUID NOT NULL REFERENCES internships(id) ON DELETE CASCADE,
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    resume_url TEXT NOT NULL,
    resume_uploaded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    cover_letter TEXT NOT NULL DEFAULT '',
    answers JSONB NOT NULL DEFAULT '[]'::jsonb,
    status VARCHAR(30) NOT NULL DEFAULT 'Applied',
    notes TEXT NOT NULL DEFAULT '',
    applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    version INTEGER NOT NULL DEFAULT 1,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- One application per student per posting. The database is the final
    -- authority under concurrent submissions.
    CONSTRAINT uq_applications_internship_student UNIQUE (internship_id, student_id),
    CONSTRAINT valid_status CHECK (status IN (
        'Applied', 'Under Review', 'Shortlisted', 'Interview Scheduled',
        'Rejected', 'Offer Extended', 'Accepted', 'Withdrawn'
    )),
    CONSTRAINT valid_version CHECK (version >= 1)
);

CREATE INDEX IF NOT EXISTS idx_applications_student_id ON applications(student_id, applied_at DESC);
CREATE INDEX IF NOT EXISTS idx_applications_internship_id ON applications(internship_id, applied_at DESC);
CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status);

-- Append-only audit trail. Position starts at 1 for the submission entry.
CREATE TABLE IF NOT EXISTS application_status_history (
    application_id UUID NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    status VARCHAR(30) NOT NULL,
    changed_by UUID NOT NULL,
    changed_by_type VARCHAR(20) NOT NULL,
    changed_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    notes TEXT NOT NULL DEFAULT '',

    PRIMARY KEY (application_id, position),
    CONSTRAINT valid_position CHECK (position >= 1),
    CONSTRAINT valid_changed_by_type CHECK (changed_by_type IN ('System', 'Student', 'Company', 'Admin'))
);
`


// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: CREATE NOTIFICATIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Create notifications table
-- Version: 004

CREATE TABLE IF NOT EXISTS notifications (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL,
    title VARCHAR(200) NOT NULL,
    message TEXT NOT NULL,
    type VARCHAR(40) NOT NULL,
    related_entity_type VARCHAR(20) NOT NULL DEFAULT 'None',
    related_entity_id TEXT NOT NULL DEFAULT '',
    metadata JSONB,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    read_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_type CHECK (type IN (
        'Application_Status_Update', 'New_Application', 'Internship_Approval',
        'Company_Verification', 'Skill_Match', 'System', 'Promotional'
    )),
    CONSTRAINT valid_related_entity_type CHECK (related_entity_type IN (
        'Application', 'Internship', 'Company', 'None'
    ))
);

CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(user_id) WHERE is_read = FALSE;
`

